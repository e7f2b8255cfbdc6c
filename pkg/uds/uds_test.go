package uds

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"riskgate/pkg/exception"
)

func TestNewClientEmptyPath(t *testing.T) {
	if _, err := NewClient(""); err != exception.ErrEmptyPathUDS {
		t.Fatalf("expected ErrEmptyPathUDS, got %v", err)
	}
}

func TestNewServerEmptyPath(t *testing.T) {
	if _, err := NewServer(""); err != exception.ErrEmptyPathUDS {
		t.Fatalf("expected ErrEmptyPathUDS, got %v", err)
	}
}

func TestAcceptBeforeListen(t *testing.T) {
	server, err := NewServer(filepath.Join(t.TempDir(), "gw.sock"))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if _, err := server.Accept(); err != ErrNotListening {
		t.Fatalf("expected ErrNotListening, got %v", err)
	}
}

func TestRemoveIfExistsRejectsNonSocket(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-socket")
	if err := os.WriteFile(path, []byte("data"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := RemoveIfExists(path); err != ErrPathNotSocket {
		t.Fatalf("expected ErrPathNotSocket, got %v", err)
	}
}

func TestServerDialAccept(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gw.sock")

	server, err := NewServer(path)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := server.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer server.Close()
	if err := server.Listen(); err != ErrAlreadyListening {
		t.Fatalf("expected ErrAlreadyListening, got %v", err)
	}

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

	client, err := NewClient(path)
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
		if _, err := conn.Write([]byte("ping")); err != nil {
			t.Fatalf("write: %v", err)
		}
		buf := make([]byte, 4)
		if _, err := io.ReadFull(serverConn, buf); err != nil {
			t.Fatalf("read: %v", err)
		}
		if string(buf) != "ping" {
			t.Fatalf("unexpected payload %q", buf)
		}
		serverConn.Close()
	case <-timer.C:
		t.Fatal("timeout waiting for accept")
	}

	if err := server.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected socket path removed, got %v", err)
	}
}
