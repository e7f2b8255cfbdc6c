package tcp

import (
	"errors"
	"net"
	"sync"

	"riskgate/pkg/exception"
)

const tcpNetwork = "tcp"

var (
	// ErrNilServer is returned when a nil server receiver is used.
	ErrNilServer = errors.New("tcp: nil server")
	// ErrAlreadyListening is returned when Listen is called twice.
	ErrAlreadyListening = errors.New("tcp: already listening")
	// ErrNotListening is returned when Accept is called before Listen.
	ErrNotListening = errors.New("tcp: not listening")
	// ErrNilClient is returned when a nil client receiver is used.
	ErrNilClient = errors.New("tcp: nil client")
)

// Server accepts order gateway clients over TCP. It satisfies net.Listener once Listen
// has succeeded.
type Server struct {
	address string

	mu sync.Mutex
	ln *net.TCPListener
}

var _ net.Listener = (*Server)(nil)

// NewServer creates a server for a host:port address. Port 0 picks a free port.
func NewServer(address string) (*Server, error) {
	if address == "" {
		return nil, exception.ErrEmptyAddressTCP
	}
	return &Server{address: address}, nil
}

// Listen binds the address.
func (s *Server) Listen() error {
	if s == nil {
		return ErrNilServer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return ErrAlreadyListening
	}
	addr, err := net.ResolveTCPAddr(tcpNetwork, s.address)
	if err != nil {
		return err
	}
	ln, err := net.ListenTCP(tcpNetwork, addr)
	if err != nil {
		return err
	}
	s.ln = ln
	return nil
}

// Accept waits for the next client. Nagle is disabled on every accepted connection.
func (s *Server) Accept() (net.Conn, error) {
	if s == nil {
		return nil, ErrNilServer
	}
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return nil, ErrNotListening
	}
	conn, err := ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	_ = conn.SetNoDelay(true)
	return conn, nil
}

// Addr returns the bound address. Before Listen it returns nil.
func (s *Server) Addr() net.Addr {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Close stops the listener.
func (s *Server) Close() error {
	if s == nil {
		return ErrNilServer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	err := s.ln.Close()
	s.ln = nil
	return err
}
