package engine

import (
	"time"

	"riskgate/internal/obs"
	"riskgate/internal/order"
	"riskgate/internal/risk"
	"riskgate/internal/schema"
	"riskgate/pkg/exception"
)

// Config wires the engine's dependencies.
type Config struct {
	Limits  risk.Limits
	Clock   func() time.Time
	Metrics *obs.Metrics
}

// Engine owns the position book and the order store and applies client requests to them.
//
// Engine is not safe for concurrent use. Exactly one goroutine drives it; see gateway.Server.
type Engine struct {
	limits  risk.Limits
	book    *risk.Book
	store   *order.Store
	now     func() time.Time
	metrics *obs.Metrics
}

// Result is the outcome of one dispatched message.
type Result struct {
	// Respond is false for messages that never produce a response.
	Respond  bool
	Header   schema.Header
	Response schema.OrderResponse
}

// Snapshot is a read-only view of the engine state.
type Snapshot struct {
	Limits      risk.Limits          `json:"limits"`
	Positions   []risk.PositionEntry `json:"positions"`
	LiveOrders  int                  `json:"liveOrders"`
	Connections int                  `json:"connections"`
}

// New builds an engine with an empty book and store.
func New(cfg Config) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Engine{
		limits:  cfg.Limits,
		book:    risk.NewBook(),
		store:   order.NewStore(),
		now:     cfg.Clock,
		metrics: cfg.Metrics,
	}
}

// Limits returns the configured thresholds.
func (e *Engine) Limits() risk.Limits {
	return e.limits
}

// Open starts bookkeeping for a freshly accepted connection.
func (e *Engine) Open(conn order.ConnID) {
	e.store.OpenConnection(conn)
}

// Handle applies one decoded message received on conn.
//
// A non-nil error describes why the message was rejected or ignored. It never means the
// connection must close. When the result carries a response it must be sent regardless of err.
func (e *Engine) Handle(conn order.ConnID, h schema.Header, msg schema.Message) (Result, error) {
	start := e.now()
	res, err := e.handle(conn, h, msg)
	e.metrics.ObserveDispatch(e.now().Sub(start))
	if res.Respond {
		e.metrics.ObserveStatus(res.Response.Status)
	}
	e.metrics.IncError(err)
	return res, err
}

func (e *Engine) handle(conn order.ConnID, h schema.Header, msg schema.Message) (Result, error) {
	if msg == nil {
		return Result{}, exception.ErrMalformedMessage
	}
	e.metrics.ObserveMessage(msg.Type())

	switch m := msg.(type) {
	case schema.NewOrder:
		status, err := e.newOrder(conn, m)
		return e.respond(h, m.OrderID, status), err
	case schema.DeleteOrder:
		return Result{}, e.deleteOrder(m)
	case schema.ModifyOrderQuantity:
		status, err := e.modifyOrder(m)
		return e.respond(h, m.OrderID, status), err
	case schema.Trade:
		return Result{}, e.trade(m)
	default:
		// OrderResponse and anything else only flow server to client.
		return Result{}, exception.ErrMalformedMessage
	}
}

func (e *Engine) newOrder(conn order.ConnID, req schema.NewOrder) (schema.Status, error) {
	if req.Price == 0 || req.Quantity == 0 || !req.Side.Valid() {
		return schema.StatusRejected, exception.ErrInvalidField
	}
	if _, exists := e.store.FindOrder(req.OrderID); exists {
		return schema.StatusRejected, exception.ErrDuplicateOrder
	}

	pos := e.book.GetOrCreate(req.ListingID)
	if !pos.TryAddExposure(req.Side, req.Quantity, e.limits) {
		return schema.StatusRejected, exception.ErrRiskLimitExceeded
	}

	o := order.New(req)
	if err := e.store.CreateOrder(conn, o); err != nil {
		pos.RollbackExposure(o)
		return schema.StatusRejected, err
	}
	return schema.StatusAccepted, nil
}

func (e *Engine) deleteOrder(req schema.DeleteOrder) error {
	o, ok := e.store.FindOrder(req.OrderID)
	if !ok {
		return exception.ErrOrderNotFound
	}
	e.release(o)
	return nil
}

func (e *Engine) modifyOrder(req schema.ModifyOrderQuantity) (schema.Status, error) {
	if req.NewQuantity == 0 {
		return schema.StatusRejected, exception.ErrInvalidField
	}
	o, ok := e.store.FindOrder(req.OrderID)
	if !ok {
		return schema.StatusRejected, exception.ErrOrderNotFound
	}
	pos, ok := e.book.Get(o.InstrumentID)
	if !ok {
		return schema.StatusRejected, exception.ErrOrderNotFound
	}
	if !pos.TryModifyExposure(o, req.NewQuantity, e.limits) {
		return schema.StatusRejected, exception.ErrRiskLimitExceeded
	}
	return schema.StatusAccepted, nil
}

func (e *Engine) trade(req schema.Trade) error {
	if req.Price == 0 || req.Quantity == 0 {
		return exception.ErrInvalidField
	}
	if _, ok := e.store.FindOrder(req.TradeID); !ok {
		return exception.ErrOrderNotFound
	}
	pos, ok := e.book.Get(req.ListingID)
	if !ok {
		return exception.ErrOrderNotFound
	}
	pos.ApplyTrade(req.Quantity)
	return nil
}

// Disconnect releases every live order opened through conn and drops its bookkeeping.
// It returns the number of orders released.
func (e *Engine) Disconnect(conn order.ConnID) int {
	ids := e.store.OrdersOf(conn)
	released := 0
	for _, id := range ids {
		o, ok := e.store.FindOrder(id)
		if !ok || o.Owner != conn {
			continue
		}
		e.release(o)
		released++
	}
	e.store.DropConnection(conn)
	return released
}

// release rolls back an order's exposure, then deletes it.
func (e *Engine) release(o *order.Order) {
	if pos, ok := e.book.Get(o.InstrumentID); ok {
		pos.RollbackExposure(o)
	}
	e.store.DeleteOrder(o.ID)
}

// Snapshot copies the current state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Limits:      e.limits,
		Positions:   e.book.Snapshot(),
		LiveOrders:  e.store.Len(),
		Connections: e.store.Connections(),
	}
}

func (e *Engine) respond(req schema.Header, orderID uint64, status schema.Status) Result {
	return Result{
		Respond: true,
		Header: schema.Header{
			Version:        req.Version,
			PayloadSize:    schema.OrderResponseSize,
			SequenceNumber: req.SequenceNumber + 1,
			Timestamp:      uint64(e.now().UnixNano()),
		},
		Response: schema.OrderResponse{OrderID: orderID, Status: status},
	}
}
