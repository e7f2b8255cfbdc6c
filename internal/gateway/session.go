package gateway

import (
	"bufio"
	"context"
	"errors"
	"io"
	"math"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	yerrors "github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"riskgate/internal/bus"
	"riskgate/internal/codec"
	"riskgate/internal/order"
	"riskgate/internal/schema"
)

const readBufferSize = 4096

type session struct {
	id       order.ConnID
	uuid     uuid.UUID
	conn     net.Conn
	remote   string
	openedAt time.Time
	messages uint64
}

func (sess *session) info() ConnectionInfo {
	return ConnectionInfo{
		ConnID:   uint64(sess.id),
		Session:  sess.uuid.String(),
		Remote:   sess.remote,
		OpenedAt: sess.openedAt,
		Messages: atomic.LoadUint64(&sess.messages),
	}
}

// readLoop reads one frame at a time and writes its response, if any, before reading the
// next. It returns when the peer goes away or the connection breaks.
func (s *Server) readLoop(ctx context.Context, sess *session) error {
	var (
		r       = bufio.NewReaderSize(sess.conn, readBufferSize)
		header  = make([]byte, codec.HeaderSize)
		payload = make([]byte, math.MaxUint16)
		out     = make([]byte, 0, codec.HeaderSize+schema.OrderResponseSize)
	)

	for {
		if _, err := io.ReadFull(r, header); err != nil {
			return err
		}
		h, _ := codec.DecodeHeader(header)
		body := payload[:h.PayloadSize]
		if _, err := io.ReadFull(r, body); err != nil {
			return yerrors.Wrap(err, "read payload").With("payloadSize", h.PayloadSize)
		}
		start := time.Now()
		atomic.AddUint64(&sess.messages, 1)

		msg, err := codec.Decode(h, body)
		if err != nil {
			s.metrics.IncError(err)
			logs.Warnf("drop malformed message, conn: %d, seq: %d, payloadSize: %d, err: %v", sess.id, h.SequenceNumber, h.PayloadSize, err)
			continue
		}

		reply, err := s.queue.Call(ctx, bus.Event{Kind: bus.KindMessage, Conn: sess.id, Header: h, Message: msg})
		if err != nil {
			return err
		}
		if reply.Err != nil {
			logs.Warnf("%s not applied, conn: %d, seq: %d, err: %v", msg.Type(), sess.id, h.SequenceNumber, reply.Err)
		}

		if reply.Result.Respond {
			out = codec.EncodeFrame(out[:0], reply.Result.Header, reply.Result.Response)
			if _, err := sess.conn.Write(out); err != nil {
				return yerrors.Wrap(err, "write response")
			}
		}
		s.metrics.ObserveRequest(time.Since(start))
	}
}

func isDisconnect(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed)
}
