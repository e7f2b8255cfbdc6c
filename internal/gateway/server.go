package gateway

import (
	"context"
	"errors"
	"net"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	yerrors "github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"golang.org/x/sync/errgroup"

	"riskgate/internal/bus"
	"riskgate/internal/engine"
	"riskgate/internal/obs"
	"riskgate/internal/order"
	"riskgate/pkg/exception"
)

const defaultQueueCapacity = 1024

// Config wires a gateway server.
type Config struct {
	Engine        *engine.Engine
	Listener      net.Listener
	QueueCapacity int
	Metrics       *obs.Metrics
}

// Server accepts client connections and funnels every request through one engine goroutine.
type Server struct {
	engine   *engine.Engine
	ln       net.Listener
	queue    *bus.Queue
	metrics  *obs.Metrics
	nextConn uint64

	mu       sync.Mutex
	sessions map[order.ConnID]*session
}

// ConnectionInfo describes one open client connection.
type ConnectionInfo struct {
	ConnID   uint64    `json:"connId"`
	Session  string    `json:"session"`
	Remote   string    `json:"remote"`
	OpenedAt time.Time `json:"openedAt"`
	Messages uint64    `json:"messages"`
}

// NewServer validates the config and builds a server. The server owns the listener from now on.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Engine == nil || cfg.Listener == nil {
		return nil, exception.ErrNilInstance
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = defaultQueueCapacity
	}
	return &Server{
		engine:   cfg.Engine,
		ln:       cfg.Listener,
		queue:    bus.NewQueue(cfg.QueueCapacity),
		metrics:  cfg.Metrics,
		sessions: make(map[order.ConnID]*session),
	}, nil
}

// Addr returns the listener address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Run serves until ctx is done or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.queue.Run(gctx, s.dispatch)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		_ = s.ln.Close()
		s.queue.Close()
		s.closeSessions()
		return nil
	})

	g.Go(func() error {
		for {
			conn, err := s.ln.Accept()
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				if errors.Is(err, net.ErrClosed) {
					return yerrors.Wrap(exception.ErrConnectionClosed, "listener closed")
				}
				return yerrors.Wrap(err, "accept")
			}
			g.Go(func() error {
				s.serve(gctx, conn)
				return nil
			})
		}
	})

	return g.Wait()
}

// Snapshot reads the engine state through the engine goroutine.
func (s *Server) Snapshot(ctx context.Context) (engine.Snapshot, error) {
	r, err := s.queue.Call(ctx, bus.Event{Kind: bus.KindQuery})
	if err != nil {
		return engine.Snapshot{}, err
	}
	return r.Snapshot, nil
}

// Connections lists the open connections ordered by connection id.
func (s *Server) Connections() []ConnectionInfo {
	s.mu.Lock()
	out := make([]ConnectionInfo, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.info())
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ConnID < out[j].ConnID })
	return out
}

// QueueLen returns the number of events waiting for the engine goroutine.
func (s *Server) QueueLen() int {
	return s.queue.Len()
}

// dispatch runs on the engine goroutine only.
func (s *Server) dispatch(e bus.Event) {
	switch e.Kind {
	case bus.KindOpen:
		s.engine.Open(e.Conn)
		e.Respond(bus.Reply{})
	case bus.KindMessage:
		res, err := s.engine.Handle(e.Conn, e.Header, e.Message)
		e.Respond(bus.Reply{Result: res, Err: err})
	case bus.KindClose:
		e.Respond(bus.Reply{Released: s.engine.Disconnect(e.Conn)})
	case bus.KindQuery:
		e.Respond(bus.Reply{Snapshot: s.engine.Snapshot()})
	default:
		logs.Errorf("unknown event kind, kind: %d, conn: %d", e.Kind, e.Conn)
		e.Respond(bus.Reply{Err: exception.ErrInvalidArgument})
	}
}

func (s *Server) serve(ctx context.Context, conn net.Conn) {
	sess := &session{
		id:       order.ConnID(atomic.AddUint64(&s.nextConn, 1)),
		uuid:     uuid.New(),
		conn:     conn,
		remote:   remoteString(conn),
		openedAt: time.Now(),
	}
	s.track(sess)
	defer s.untrack(sess)

	s.metrics.IncConnOpened()
	logs.Infof("connection opened, conn: %d, session: %s, remote: %s", sess.id, sess.uuid, sess.remote)

	if _, err := s.queue.Call(ctx, bus.Event{Kind: bus.KindOpen, Conn: sess.id}); err != nil {
		_ = conn.Close()
		s.metrics.IncConnClosed(0)
		return
	}

	err := s.readLoop(ctx, sess)
	if err != nil && !isDisconnect(err) && ctx.Err() == nil {
		logs.Errorf("connection failed, conn: %d, session: %s, err: %+v", sess.id, sess.uuid, err)
	}

	released := 0
	if r, err := s.queue.Call(ctx, bus.Event{Kind: bus.KindClose, Conn: sess.id}); err == nil {
		released = r.Released
	}
	_ = conn.Close()
	s.metrics.IncConnClosed(released)
	logs.Infof("connection closed, conn: %d, session: %s, released orders: %d", sess.id, sess.uuid, released)
}

func (s *Server) track(sess *session) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
}

func (s *Server) untrack(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		_ = sess.conn.Close()
	}
}

func remoteString(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil && addr.String() != "" {
		return addr.String()
	}
	return "local"
}
