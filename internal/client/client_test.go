package client

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskgate/internal/codec"
	"riskgate/internal/engine"
	"riskgate/internal/gateway"
	"riskgate/internal/risk"
	"riskgate/internal/schema"
	"riskgate/pkg/exception"
	"riskgate/pkg/tcp"
)

func startGateway(t *testing.T, buy, sell uint64) string {
	t.Helper()
	ln, err := tcp.NewServer("127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Listen())

	srv, err := gateway.NewServer(gateway.Config{
		Engine:   engine.New(engine.Config{Limits: risk.Limits{BuyThreshold: buy, SellThreshold: sell}}),
		Listener: ln,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return srv.Addr().String()
}

func dial(t *testing.T, address string) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, "tcp", address)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSendAndWait(t *testing.T) {
	c := dial(t, startGateway(t, 10, 10))

	resp, err := c.SendAndWait(waitCtx(t), schema.NewOrder{ListingID: 1, OrderID: 1, Quantity: 10, Price: 100000, Side: schema.SideBuy})
	require.NoError(t, err)
	assert.Equal(t, schema.OrderResponse{OrderID: 1, Status: schema.StatusAccepted}, resp)

	resp, err = c.SendAndWait(waitCtx(t), schema.ModifyOrderQuantity{OrderID: 1, NewQuantity: 11})
	require.NoError(t, err)
	assert.Equal(t, schema.StatusRejected, resp.Status)

	_, err = c.SendAndWait(waitCtx(t), schema.DeleteOrder{OrderID: 1})
	require.ErrorIs(t, err, exception.ErrNoResponse)
}

func TestSendIncrementsSequence(t *testing.T) {
	server, peer := net.Pipe()
	defer server.Close()
	c := New(peer)
	defer c.Close()

	go func() {
		buf := make([]byte, 2*(codec.HeaderSize+schema.DeleteOrderSize))
		_, _ = server.Read(buf)
		_, _ = server.Read(buf)
	}()

	h1, err := c.Send(schema.DeleteOrder{OrderID: 1})
	require.NoError(t, err)
	h2, err := c.Send(schema.DeleteOrder{OrderID: 2})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), h1.SequenceNumber)
	assert.Equal(t, uint32(2), h2.SequenceNumber)
	assert.Equal(t, uint16(schema.DeleteOrderSize), h1.PayloadSize)
	assert.Equal(t, schema.ProtocolVersion, h1.Version)
}

func TestReadResponseRejectsWrongSize(t *testing.T) {
	server, peer := net.Pipe()
	defer server.Close()
	c := New(peer)
	defer c.Close()

	go func() {
		_, _ = server.Write(codec.EncodeHeader(nil, schema.Header{PayloadSize: 35}))
	}()
	_, _, err := c.ReadResponse()
	require.ErrorIs(t, err, exception.ErrMalformedMessage)
}

func TestParseMessage(t *testing.T) {
	msg, err := ParseMessage(schema.MessageNewOrder, []string{"1", "2", "10", "100000", "B"})
	require.NoError(t, err)
	assert.Equal(t, schema.NewOrder{ListingID: 1, OrderID: 2, Quantity: 10, Price: 100000, Side: schema.SideBuy}, msg)

	msg, err = ParseMessage(schema.MessageTrade, []string{"2", "4", "-4", "15000"})
	require.NoError(t, err)
	assert.Equal(t, schema.Trade{ListingID: 2, TradeID: 4, Quantity: -4, Price: 15000}, msg)

	msg, err = ParseMessage(schema.MessageDeleteOrder, []string{"3"})
	require.NoError(t, err)
	assert.Equal(t, schema.DeleteOrder{OrderID: 3}, msg)

	_, err = ParseMessage(schema.MessageOrderResponse, []string{"1", "0"})
	require.Error(t, err)
	_, err = ParseMessage(schema.MessageModifyOrderQuantity, []string{"1"})
	require.Error(t, err)
	_, err = ParseMessage(schema.MessageNewOrder, []string{"1", "2", "-10", "1", "B"})
	require.Error(t, err)
	_, err = ParseMessage(schema.MessageNewOrder, []string{"1", "2", "10", "1", "BUY"})
	require.Error(t, err)
}

func TestRunPrompt(t *testing.T) {
	c := dial(t, startGateway(t, 10, 10))

	in := strings.NewReader("1 1 1 10 100000 B\n7\n1 1 2 1 100000 B\n2 1\n1 1 2 1 100000 B\n")
	var out bytes.Buffer
	require.NoError(t, RunPrompt(context.Background(), c, in, &out))

	lines := out.String()
	assert.Equal(t, 6, strings.Count(lines, "Insert message type: "))
	assert.Contains(t, lines, "Invalid, try again")
	assert.Equal(t, []string{MessageAccepted, MessageRejected, "SENT", MessageAccepted}, outcomes(lines))
}

func outcomes(s string) []string {
	var out []string
	for _, f := range strings.Fields(s) {
		switch f {
		case MessageAccepted, MessageRejected, "SENT":
			out = append(out, f)
		}
	}
	return out
}
