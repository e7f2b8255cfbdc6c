package uds

import (
	"context"
	"net"

	"riskgate/pkg/exception"
)

const unixNetwork = "unix"

// Client dials a gateway Unix domain socket.
type Client struct {
	addr   net.UnixAddr
	dialer net.Dialer
}

// NewClient creates a client for the provided socket path.
func NewClient(path string) (*Client, error) {
	if path == "" {
		return nil, exception.ErrEmptyPathUDS
	}
	return &Client{addr: net.UnixAddr{Name: path, Net: unixNetwork}}, nil
}

// Path returns the configured socket path.
func (c *Client) Path() string {
	if c == nil {
		return ""
	}
	return c.addr.Name
}

// Dial opens a connection to the socket.
func (c *Client) Dial(ctx context.Context) (net.Conn, error) {
	if c == nil {
		return nil, exception.ErrNilClientUDS
	}
	return c.dialer.DialContext(ctx, unixNetwork, c.addr.Name)
}
