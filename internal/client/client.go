package client

import (
	"bufio"
	"context"
	"io"
	"net"
	"time"

	"github.com/yanun0323/errors"

	"riskgate/internal/codec"
	"riskgate/internal/schema"
	"riskgate/pkg/exception"
	"riskgate/pkg/tcp"
	"riskgate/pkg/uds"
)

// Client speaks the gateway wire protocol over one connection. It is not safe for
// concurrent use.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
	seq  uint32
	out  []byte
	in   []byte
	now  func() time.Time
}

// Dial connects to a gateway. network is "tcp" or "unix".
func Dial(ctx context.Context, network, address string) (*Client, error) {
	var (
		conn net.Conn
		err  error
	)
	switch network {
	case "unix":
		var c *uds.Client
		if c, err = uds.NewClient(address); err == nil {
			conn, err = c.Dial(ctx)
		}
	default:
		var c *tcp.Client
		if c, err = tcp.NewClient(address); err == nil {
			conn, err = c.Dial(ctx)
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "dial gateway").With("network", network).With("address", address)
	}
	return New(conn), nil
}

// New wraps an established connection.
func New(conn net.Conn) *Client {
	return &Client{
		conn: conn,
		r:    bufio.NewReader(conn),
		out:  make([]byte, 0, codec.HeaderSize+schema.NewOrderSize),
		in:   make([]byte, codec.HeaderSize+schema.OrderResponseSize),
		now:  time.Now,
	}
}

// ExpectsResponse reports whether the gateway answers messages of type t.
func ExpectsResponse(t schema.MessageType) bool {
	return t == schema.MessageNewOrder || t == schema.MessageModifyOrderQuantity
}

// Send writes one framed request and returns the header it used.
func (c *Client) Send(msg schema.Message) (schema.Header, error) {
	c.seq++
	h := schema.NewHeader(msg.Type(), c.seq, uint64(c.now().UnixNano()))
	c.out = codec.EncodeFrame(c.out[:0], h, msg)
	if _, err := c.conn.Write(c.out); err != nil {
		return h, errors.Wrap(err, "write request")
	}
	return h, nil
}

// ReadResponse reads one OrderResponse frame.
func (c *Client) ReadResponse() (schema.Header, schema.OrderResponse, error) {
	if _, err := io.ReadFull(c.r, c.in[:codec.HeaderSize]); err != nil {
		return schema.Header{}, schema.OrderResponse{}, errors.Wrap(err, "read response header")
	}
	h, _ := codec.DecodeHeader(c.in)
	if h.PayloadSize != schema.OrderResponseSize {
		return h, schema.OrderResponse{}, exception.ErrMalformedMessage
	}
	payload := c.in[codec.HeaderSize:]
	if _, err := io.ReadFull(c.r, payload); err != nil {
		return h, schema.OrderResponse{}, errors.Wrap(err, "read response payload")
	}
	msg, err := codec.Decode(h, payload)
	if err != nil {
		return h, schema.OrderResponse{}, err
	}
	resp, ok := msg.(schema.OrderResponse)
	if !ok {
		return h, schema.OrderResponse{}, exception.ErrMalformedMessage
	}
	return h, resp, nil
}

// SendAndWait sends a request that is answered and waits for the answer. ctx bounds the
// whole exchange through the connection deadline.
func (c *Client) SendAndWait(ctx context.Context, msg schema.Message) (schema.OrderResponse, error) {
	if !ExpectsResponse(msg.Type()) {
		return schema.OrderResponse{}, exception.ErrNoResponse
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetDeadline(deadline)
		defer c.conn.SetDeadline(time.Time{})
	}
	if _, err := c.Send(msg); err != nil {
		return schema.OrderResponse{}, err
	}
	_, resp, err := c.ReadResponse()
	return resp, err
}

// Close closes the connection. Every live order sent through it is released by the gateway.
func (c *Client) Close() error {
	return c.conn.Close()
}
