package tcp

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"riskgate/pkg/exception"
)

func TestNewServerEmptyAddress(t *testing.T) {
	if _, err := NewServer(""); err != exception.ErrEmptyAddressTCP {
		t.Fatalf("expected ErrEmptyAddressTCP, got %v", err)
	}
	if _, err := NewClient(""); err != exception.ErrEmptyAddressTCP {
		t.Fatalf("expected ErrEmptyAddressTCP, got %v", err)
	}
}

func TestAcceptBeforeListen(t *testing.T) {
	server, err := NewServer("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if _, err := server.Accept(); err != ErrNotListening {
		t.Fatalf("expected ErrNotListening, got %v", err)
	}
	if server.Addr() != nil {
		t.Fatalf("expected nil addr before Listen")
	}
}

func TestServerDialAccept(t *testing.T) {
	server, err := NewServer("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := server.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer server.Close()

	acceptCh := make(chan net.Conn, 1)
	errCh := make(chan error, 1)
	go func() {
		conn, err := server.Accept()
		if err != nil {
			errCh <- err
			return
		}
		acceptCh <- conn
	}()

	client, err := NewClient(server.Addr().String())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	conn, err := client.Dial(context.Background())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	timer := time.NewTimer(2 * time.Second)
	defer timer.Stop()

	select {
	case err := <-errCh:
		t.Fatalf("Accept: %v", err)
	case serverConn := <-acceptCh:
		defer serverConn.Close()
		if _, err := serverConn.Write([]byte("pong")); err != nil {
			t.Fatalf("write: %v", err)
		}
		buf := make([]byte, 4)
		if _, err := io.ReadFull(conn, buf); err != nil {
			t.Fatalf("read: %v", err)
		}
		if string(buf) != "pong" {
			t.Fatalf("unexpected payload %q", buf)
		}
	case <-timer.C:
		t.Fatal("timeout waiting for accept")
	}
}
