package obs

import (
	"errors"
	"sync/atomic"
	"time"

	"riskgate/internal/schema"
	"riskgate/pkg/exception"
)

const maxMessageType = int(schema.MessageOrderResponse)

// ErrorKind is a coarse classification of per-message failures.
type ErrorKind uint8

const (
	ErrorKindOther ErrorKind = iota
	ErrorKindMalformed
	ErrorKindInvalidField
	ErrorKindDuplicateOrder
	ErrorKindOrderNotFound
	ErrorKindRiskLimit
	errorKindCount
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindMalformed:
		return "malformed_message"
	case ErrorKindInvalidField:
		return "invalid_field"
	case ErrorKindDuplicateOrder:
		return "duplicate_order"
	case ErrorKindOrderNotFound:
		return "order_not_found"
	case ErrorKindRiskLimit:
		return "risk_limit_exceeded"
	default:
		return "other"
	}
}

// KindOf classifies an error returned by the codec or the dispatcher.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, exception.ErrMalformedMessage):
		return ErrorKindMalformed
	case errors.Is(err, exception.ErrInvalidField):
		return ErrorKindInvalidField
	case errors.Is(err, exception.ErrDuplicateOrder):
		return ErrorKindDuplicateOrder
	case errors.Is(err, exception.ErrOrderNotFound):
		return ErrorKindOrderNotFound
	case errors.Is(err, exception.ErrRiskLimitExceeded):
		return ErrorKindRiskLimit
	default:
		return ErrorKindOther
	}
}

// Metrics collects lightweight counters and latency stats. Safe for concurrent use.
type Metrics struct {
	messageCounts  [maxMessageType + 1]uint64
	statusCounts   [2]uint64
	errorCounts    [errorKindCount]uint64
	connsOpened    uint64
	connsClosed    uint64
	ordersReleased uint64

	dispatchLatency LatencyStats
	requestLatency  LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Sum   time.Duration
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	MessageCounts     map[schema.MessageType]uint64
	StatusCounts      map[schema.Status]uint64
	ErrorCounts       map[ErrorKind]uint64
	ConnectionsOpened uint64
	ConnectionsClosed uint64
	OrdersReleased    uint64
	DispatchLatency   LatencySnapshot
	RequestLatency    LatencySnapshot
}

// OpenConnections returns the number of connections accepted and not yet torn down.
func (s Snapshot) OpenConnections() uint64 {
	if s.ConnectionsClosed > s.ConnectionsOpened {
		return 0
	}
	return s.ConnectionsOpened - s.ConnectionsClosed
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveMessage counts one decoded message by type.
func (m *Metrics) ObserveMessage(t schema.MessageType) {
	if m == nil {
		return
	}
	idx := int(t)
	if idx >= 0 && idx < len(m.messageCounts) {
		atomic.AddUint64(&m.messageCounts[idx], 1)
	}
}

// ObserveStatus counts one response by status.
func (m *Metrics) ObserveStatus(s schema.Status) {
	if m == nil {
		return
	}
	idx := int(s)
	if idx >= 0 && idx < len(m.statusCounts) {
		atomic.AddUint64(&m.statusCounts[idx], 1)
	}
}

// IncError counts a per-message failure.
func (m *Metrics) IncError(err error) {
	if m == nil || err == nil {
		return
	}
	atomic.AddUint64(&m.errorCounts[KindOf(err)], 1)
}

// IncConnOpened records an accepted connection.
func (m *Metrics) IncConnOpened() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.connsOpened, 1)
}

// IncConnClosed records a torn down connection and the orders it released.
func (m *Metrics) IncConnClosed(released int) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.connsClosed, 1)
	if released > 0 {
		atomic.AddUint64(&m.ordersReleased, uint64(released))
	}
}

// ObserveDispatch measures time spent inside the dispatcher.
func (m *Metrics) ObserveDispatch(d time.Duration) {
	if m == nil {
		return
	}
	m.dispatchLatency.Observe(d)
}

// ObserveRequest measures time from a complete frame read to its response being written.
func (m *Metrics) ObserveRequest(d time.Duration) {
	if m == nil {
		return
	}
	m.requestLatency.Observe(d)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	messageCounts := make(map[schema.MessageType]uint64)
	for i := range m.messageCounts {
		if v := atomic.LoadUint64(&m.messageCounts[i]); v > 0 {
			messageCounts[schema.MessageType(i)] = v
		}
	}
	statusCounts := make(map[schema.Status]uint64)
	for i := range m.statusCounts {
		if v := atomic.LoadUint64(&m.statusCounts[i]); v > 0 {
			statusCounts[schema.Status(i)] = v
		}
	}
	errorCounts := make(map[ErrorKind]uint64)
	for i := range m.errorCounts {
		if v := atomic.LoadUint64(&m.errorCounts[i]); v > 0 {
			errorCounts[ErrorKind(i)] = v
		}
	}
	return Snapshot{
		MessageCounts:     messageCounts,
		StatusCounts:      statusCounts,
		ErrorCounts:       errorCounts,
		ConnectionsOpened: atomic.LoadUint64(&m.connsOpened),
		ConnectionsClosed: atomic.LoadUint64(&m.connsClosed),
		OrdersReleased:    atomic.LoadUint64(&m.ordersReleased),
		DispatchLatency:   m.dispatchLatency.Snapshot(),
		RequestLatency:    m.requestLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	return LatencySnapshot{
		Count: count,
		Sum:   time.Duration(sum),
		Min:   time.Duration(atomic.LoadUint64(&l.min)),
		Max:   time.Duration(atomic.LoadUint64(&l.max)),
		Avg:   time.Duration(sum / count),
	}
}
