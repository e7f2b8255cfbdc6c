package admin

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"riskgate/internal/engine"
	"riskgate/internal/gateway"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	queryTimeout    = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Source is the gateway state the admin surface reads.
type Source interface {
	Snapshot(ctx context.Context) (engine.Snapshot, error)
	Connections() []gateway.ConnectionInfo
}

// Server exposes health, metrics and state snapshots over HTTP.
type Server struct {
	router    *mux.Router
	source    Source
	gatherer  prometheus.Gatherer
	startTime time.Time
}

// NewServer builds the admin router.
func NewServer(source Source, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		source:    source,
		gatherer:  gatherer,
		startTime: time.Now(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods("GET")
	s.router.HandleFunc("/positions", s.handlePositions).Methods("GET")
	s.router.HandleFunc("/positions/{instrument_id}", s.handlePosition).Methods("GET")
	s.router.HandleFunc("/connections", s.handleConnections).Methods("GET")
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on address until ctx is done.
func (s *Server) Run(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logs.Infof("admin server listening, address: %s", address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "admin listen").With("address", address)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "admin shutdown")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["instrument_id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid instrument id")
		return
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	for _, p := range snap.Positions {
		if p.InstrumentID == id {
			respondJSON(w, http.StatusOK, p)
			return
		}
	}
	respondError(w, http.StatusNotFound, "position not found")
}

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.source.Connections())
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (engine.Snapshot, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		logs.Errorf("snapshot query failed, err: %+v", err)
		respondError(w, http.StatusServiceUnavailable, "engine unavailable")
		return engine.Snapshot{}, false
	}
	return snap, true
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, map[string]string{"error": message})
}
