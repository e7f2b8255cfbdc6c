package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskgate/internal/schema"
	"riskgate/pkg/exception"
)

func TestHeaderLayout(t *testing.T) {
	h := schema.Header{
		Version:        0x0102,
		PayloadSize:    0x0304,
		SequenceNumber: 0x05060708,
		Timestamp:      0x090a0b0c0d0e0f10,
	}
	buf := EncodeHeader(nil, h)
	require.Len(t, buf, HeaderSize)
	assert.Equal(t, []byte{
		0x02, 0x01,
		0x04, 0x03,
		0x08, 0x07, 0x06, 0x05,
		0x10, 0x0f, 0x0e, 0x0d, 0x0c, 0x0b, 0x0a, 0x09,
	}, buf)

	got, ok := DecodeHeader(buf)
	require.True(t, ok)
	assert.Equal(t, h, got)

	_, ok = DecodeHeader(buf[:HeaderSize-1])
	assert.False(t, ok)
}

func TestNewOrderLayout(t *testing.T) {
	buf := EncodeNewOrder(nil, schema.NewOrder{
		ListingID: 1,
		OrderID:   2,
		Quantity:  3,
		Price:     4,
		Side:      schema.SideSell,
	})
	require.Len(t, buf, 35)
	assert.Equal(t, []byte{1, 0}, buf[0:2])
	assert.Equal(t, byte(1), buf[2])
	assert.Equal(t, byte(2), buf[10])
	assert.Equal(t, byte(3), buf[18])
	assert.Equal(t, byte(4), buf[26])
	assert.Equal(t, byte(0x53), buf[34])
}

func TestDecodeMessages(t *testing.T) {
	msgs := []schema.Message{
		schema.NewOrder{ListingID: 7, OrderID: 8, Quantity: 10, Price: 100000, Side: schema.SideBuy},
		schema.DeleteOrder{OrderID: 8},
		schema.ModifyOrderQuantity{OrderID: 8, NewQuantity: 4},
		schema.Trade{ListingID: 7, TradeID: 8, Quantity: -4, Price: 15000},
		schema.OrderResponse{OrderID: 8, Status: schema.StatusRejected},
	}
	for _, msg := range msgs {
		t.Run(msg.Type().String(), func(t *testing.T) {
			frame := EncodeFrame(nil, schema.Header{SequenceNumber: 9}, msg)
			h, ok := DecodeHeader(frame)
			require.True(t, ok)
			require.Equal(t, schema.PayloadSize(msg.Type()), int(h.PayloadSize))
			require.Len(t, frame, HeaderSize+int(h.PayloadSize))

			got, err := Decode(h, frame[HeaderSize:])
			require.NoError(t, err)
			assert.Equal(t, msg, got)
		})
	}
}

func TestDecodeRejectsSizeMismatch(t *testing.T) {
	payload := EncodeDeleteOrder(nil, schema.DeleteOrder{OrderID: 1})

	// declared size disagrees with the bytes handed over
	_, err := Decode(schema.Header{PayloadSize: 35}, payload)
	require.ErrorIs(t, err, exception.ErrMalformedMessage)

	// declared size matches the bytes but not the message type
	padded := append(append([]byte{}, payload...), 0, 0, 0)
	_, err = Decode(schema.Header{PayloadSize: uint16(len(padded))}, padded)
	require.ErrorIs(t, err, exception.ErrMalformedMessage)

	// a NewOrder discriminator over a DeleteOrder-sized payload must not be read as NewOrder
	payload[0] = byte(schema.MessageNewOrder)
	_, err = Decode(schema.Header{PayloadSize: uint16(len(payload))}, payload)
	require.ErrorIs(t, err, exception.ErrMalformedMessage)
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	payload := make([]byte, 10)
	payload[0] = 9
	_, err := Decode(schema.Header{PayloadSize: 10}, payload)
	require.ErrorIs(t, err, exception.ErrMalformedMessage)

	_, err = Decode(schema.Header{PayloadSize: 1}, []byte{1})
	require.ErrorIs(t, err, exception.ErrMalformedMessage)

	_, err = Decode(schema.Header{}, nil)
	require.ErrorIs(t, err, exception.ErrMalformedMessage)
}

func TestEncodeFrameReusesBuffer(t *testing.T) {
	buf := make([]byte, 0, 64)
	frame := EncodeFrame(buf, schema.Header{Version: 1}, schema.OrderResponse{OrderID: 3})
	require.Len(t, frame, HeaderSize+OrderResponsePayloadSize)
	assert.Equal(t, &buf[:1][0], &frame[0])

	resp, ok := DecodeOrderResponse(frame[HeaderSize:])
	require.True(t, ok)
	assert.Equal(t, schema.StatusAccepted, resp.Status)
	assert.Equal(t, uint64(3), resp.OrderID)
}

func TestTradeNegativeQuantity(t *testing.T) {
	buf := EncodeTrade(nil, schema.Trade{Quantity: -1})
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, buf[18:26])

	trade, ok := DecodeTrade(buf)
	require.True(t, ok)
	assert.Equal(t, int64(-1), trade.Quantity)
}
