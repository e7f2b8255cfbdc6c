package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/yanun0323/errors"

	"riskgate/internal/schema"
	"riskgate/pkg/exception"
)

const (
	MessageAccepted = "ACCEPTED"
	MessageRejected = "REJECTED"
)

// ParseMessage builds a request from whitespace separated fields in wire order:
//
//	1 NewOrder:            listingId orderId quantity price side(B|S)
//	2 DeleteOrder:         orderId
//	3 ModifyOrderQuantity: orderId newQuantity
//	4 Trade:               listingId tradeId quantity price
func ParseMessage(msgType schema.MessageType, fields []string) (schema.Message, error) {
	want := fieldCount(msgType)
	if want == 0 {
		return nil, errors.Wrapf(exception.ErrInvalidArgument, "unsupported message type %d", msgType)
	}
	if len(fields) != want {
		return nil, errors.Wrapf(exception.ErrInvalidArgument, "%s takes %d fields, got %d", msgType, want, len(fields))
	}

	var (
		p   fieldParser
		msg schema.Message
	)
	switch msgType {
	case schema.MessageNewOrder:
		msg = schema.NewOrder{
			ListingID: p.parseUint(fields[0]),
			OrderID:   p.parseUint(fields[1]),
			Quantity:  p.parseUint(fields[2]),
			Price:     p.parseUint(fields[3]),
			Side:      p.parseSide(fields[4]),
		}
	case schema.MessageDeleteOrder:
		msg = schema.DeleteOrder{OrderID: p.parseUint(fields[0])}
	case schema.MessageModifyOrderQuantity:
		msg = schema.ModifyOrderQuantity{
			OrderID:     p.parseUint(fields[0]),
			NewQuantity: p.parseUint(fields[1]),
		}
	case schema.MessageTrade:
		msg = schema.Trade{
			ListingID: p.parseUint(fields[0]),
			TradeID:   p.parseUint(fields[1]),
			Quantity:  p.parseInt(fields[2]),
			Price:     p.parseUint(fields[3]),
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return msg, nil
}

// Exchange sends msg and, when the gateway answers this message type, waits for the status.
// It returns the line to show the user.
func (c *Client) Exchange(ctx context.Context, msg schema.Message) (string, error) {
	if !ExpectsResponse(msg.Type()) {
		if _, err := c.Send(msg); err != nil {
			return "", err
		}
		return "SENT", nil
	}
	resp, err := c.SendAndWait(ctx, msg)
	if err != nil {
		return "", err
	}
	if resp.Status == schema.StatusAccepted {
		return MessageAccepted, nil
	}
	return MessageRejected, nil
}

// RunPrompt reads "type field..." requests from in until EOF, sending each through c and
// writing the outcome to out.
func RunPrompt(ctx context.Context, c *Client, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	sc.Split(bufio.ScanWords)

	for {
		fmt.Fprint(out, "Insert message type: ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		n, err := strconv.ParseUint(sc.Text(), 10, 16)
		msgType := schema.MessageType(n)
		if err != nil || fieldCount(msgType) == 0 {
			fmt.Fprintln(out, "Invalid, try again")
			continue
		}

		fields := make([]string, 0, fieldCount(msgType))
		for len(fields) < cap(fields) && sc.Scan() {
			fields = append(fields, sc.Text())
		}
		if len(fields) < cap(fields) {
			return sc.Err()
		}

		msg, err := ParseMessage(msgType, fields)
		if err != nil {
			fmt.Fprintf(out, "Invalid, try again: %v\n", err)
			continue
		}
		line, err := c.Exchange(ctx, msg)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, line)
	}
}

func fieldCount(t schema.MessageType) int {
	switch t {
	case schema.MessageNewOrder:
		return 5
	case schema.MessageDeleteOrder:
		return 1
	case schema.MessageModifyOrderQuantity:
		return 2
	case schema.MessageTrade:
		return 4
	default:
		return 0
	}
}

// fieldParser keeps the first parse error.
type fieldParser struct {
	err error
}

func (p *fieldParser) parseUint(s string) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil && p.err == nil {
		p.err = errors.Wrapf(exception.ErrInvalidArgument, "not an unsigned integer: %q", s)
	}
	return v
}

func (p *fieldParser) parseInt(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil && p.err == nil {
		p.err = errors.Wrapf(exception.ErrInvalidArgument, "not an integer: %q", s)
	}
	return v
}

func (p *fieldParser) parseSide(s string) schema.Side {
	if len(s) != 1 {
		if p.err == nil {
			p.err = errors.Wrapf(exception.ErrInvalidArgument, "side must be one character: %q", s)
		}
		return 0
	}
	return schema.Side(s[0])
}
