package tcp

import (
	"context"
	"net"

	"riskgate/pkg/exception"
)

// Client dials a gateway TCP address.
type Client struct {
	address string
	dialer  net.Dialer
}

// NewClient creates a client for a host:port address.
func NewClient(address string) (*Client, error) {
	if address == "" {
		return nil, exception.ErrEmptyAddressTCP
	}
	return &Client{address: address}, nil
}

// Address returns the configured address.
func (c *Client) Address() string {
	if c == nil {
		return ""
	}
	return c.address
}

// Dial opens a connection with Nagle disabled.
func (c *Client) Dial(ctx context.Context) (net.Conn, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	conn, err := c.dialer.DialContext(ctx, tcpNetwork, c.address)
	if err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return conn, nil
}
