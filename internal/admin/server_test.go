package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskgate/internal/engine"
	"riskgate/internal/gateway"
	"riskgate/internal/obs"
	"riskgate/internal/risk"
	"riskgate/pkg/exception"
)

type fakeSource struct {
	snap  engine.Snapshot
	conns []gateway.ConnectionInfo
	err   error
}

func (f *fakeSource) Snapshot(context.Context) (engine.Snapshot, error) {
	return f.snap, f.err
}

func (f *fakeSource) Connections() []gateway.ConnectionInfo {
	return f.conns
}

func newTestServer(src *fakeSource) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(obs.NewCollector(obs.NewMetrics(), nil))
	return NewServer(src, reg)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(&fakeSource{}), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestPositions(t *testing.T) {
	src := &fakeSource{snap: engine.Snapshot{
		Limits:     risk.Limits{BuyThreshold: 10, SellThreshold: 10},
		Positions:  []risk.PositionEntry{{InstrumentID: 2, BuyQty: 4, NetPos: -4}},
		LiveOrders: 1,
	}}
	s := newTestServer(src)

	rec := get(t, s, "/positions")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap engine.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, src.snap, snap)

	rec = get(t, s, "/positions/2")
	require.Equal(t, http.StatusOK, rec.Code)
	var entry risk.PositionEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, src.snap.Positions[0], entry)

	assert.Equal(t, http.StatusNotFound, get(t, s, "/positions/3").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, s, "/positions/abc").Code)
}

func TestPositionsEngineUnavailable(t *testing.T) {
	rec := get(t, newTestServer(&fakeSource{err: exception.ErrQueueClosed}), "/positions")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestConnections(t *testing.T) {
	opened := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	src := &fakeSource{conns: []gateway.ConnectionInfo{{ConnID: 1, Session: "s", Remote: "127.0.0.1:5000", OpenedAt: opened}}}
	rec := get(t, newTestServer(src), "/connections")
	require.Equal(t, http.StatusOK, rec.Code)

	var conns []gateway.ConnectionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conns))
	assert.Equal(t, src.conns, conns)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&fakeSource{}), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "riskgate_gateway_messages_total"))
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(&fakeSource{}).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
