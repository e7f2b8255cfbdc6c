package obs

import (
	"github.com/prometheus/client_golang/prometheus"

	"riskgate/internal/schema"
)

const namespace = "riskgate"

// Collector exports a Metrics snapshot on every scrape.
type Collector struct {
	metrics  *Metrics
	queueLen func() int

	messages        *prometheus.Desc
	responses       *prometheus.Desc
	errors          *prometheus.Desc
	connsOpened     *prometheus.Desc
	connsClosed     *prometheus.Desc
	connsOpen       *prometheus.Desc
	ordersReleased  *prometheus.Desc
	dispatchLatency *prometheus.Desc
	requestLatency  *prometheus.Desc
	queueDepth      *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector builds a collector over m. queueLen may be nil.
func NewCollector(m *Metrics, queueLen func() int) *Collector {
	return &Collector{
		metrics:  m,
		queueLen: queueLen,

		messages: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "gateway", "messages_total"),
			"Decoded client messages by type",
			[]string{"type"}, nil,
		),
		responses: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "gateway", "responses_total"),
			"Order responses by status",
			[]string{"status"}, nil,
		),
		errors: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "gateway", "errors_total"),
			"Per-message failures by kind",
			[]string{"kind"}, nil,
		),
		connsOpened: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "gateway", "connections_opened_total"),
			"Accepted client connections",
			nil, nil,
		),
		connsClosed: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "gateway", "connections_closed_total"),
			"Torn down client connections",
			nil, nil,
		),
		connsOpen: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "gateway", "connections_open"),
			"Currently open client connections",
			nil, nil,
		),
		ordersReleased: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "gateway", "orders_released_total"),
			"Live orders rolled back because their connection closed",
			nil, nil,
		),
		dispatchLatency: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "engine", "dispatch_seconds"),
			"Time spent applying one message to the engine",
			nil, nil,
		),
		requestLatency: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "gateway", "request_seconds"),
			"Time from a complete frame to its response being written",
			nil, nil,
		),
		queueDepth: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "engine", "queue_depth"),
			"Events waiting for the engine goroutine",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.messages
	ch <- c.responses
	ch <- c.errors
	ch <- c.connsOpened
	ch <- c.connsClosed
	ch <- c.connsOpen
	ch <- c.ordersReleased
	ch <- c.dispatchLatency
	ch <- c.requestLatency
	ch <- c.queueDepth
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.metrics.Snapshot()

	for t := schema.MessageNewOrder; t <= schema.MessageOrderResponse; t++ {
		ch <- prometheus.MustNewConstMetric(c.messages, prometheus.CounterValue, float64(snap.MessageCounts[t]), t.String())
	}
	for _, s := range []schema.Status{schema.StatusAccepted, schema.StatusRejected} {
		ch <- prometheus.MustNewConstMetric(c.responses, prometheus.CounterValue, float64(snap.StatusCounts[s]), s.String())
	}
	for k := ErrorKindOther; k < errorKindCount; k++ {
		ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(snap.ErrorCounts[k]), k.String())
	}

	ch <- prometheus.MustNewConstMetric(c.connsOpened, prometheus.CounterValue, float64(snap.ConnectionsOpened))
	ch <- prometheus.MustNewConstMetric(c.connsClosed, prometheus.CounterValue, float64(snap.ConnectionsClosed))
	ch <- prometheus.MustNewConstMetric(c.connsOpen, prometheus.GaugeValue, float64(snap.OpenConnections()))
	ch <- prometheus.MustNewConstMetric(c.ordersReleased, prometheus.CounterValue, float64(snap.OrdersReleased))
	ch <- latencySummary(c.dispatchLatency, snap.DispatchLatency)
	ch <- latencySummary(c.requestLatency, snap.RequestLatency)

	depth := 0
	if c.queueLen != nil {
		depth = c.queueLen()
	}
	ch <- prometheus.MustNewConstMetric(c.queueDepth, prometheus.GaugeValue, float64(depth))
}

// latencySummary exports min and max as the 0 and 1 quantiles.
func latencySummary(desc *prometheus.Desc, l LatencySnapshot) prometheus.Metric {
	return prometheus.MustNewConstSummary(desc, l.Count, l.Sum.Seconds(), map[float64]float64{
		0: l.Min.Seconds(),
		1: l.Max.Seconds(),
	})
}
