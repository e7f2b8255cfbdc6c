package codec

import (
	"encoding/binary"

	"riskgate/internal/schema"
	"riskgate/pkg/exception"
)

const messageTypeSize = 2

// PeekType reads the message type discriminator without validating the rest of the payload.
func PeekType(payload []byte) (schema.MessageType, bool) {
	if len(payload) < messageTypeSize {
		return schema.MessageUnknown, false
	}
	return schema.MessageType(binary.LittleEndian.Uint16(payload[0:2])), true
}

// Decode validates the declared payload size against the fixed size of the payload's
// message type and parses it. Nothing beyond len(payload) is read.
func Decode(h schema.Header, payload []byte) (schema.Message, error) {
	if int(h.PayloadSize) != len(payload) {
		return nil, exception.ErrMalformedMessage
	}
	msgType, ok := PeekType(payload)
	if !ok {
		return nil, exception.ErrMalformedMessage
	}
	size := schema.PayloadSize(msgType)
	if size == 0 || size != len(payload) {
		return nil, exception.ErrMalformedMessage
	}

	var (
		msg    schema.Message
		parsed bool
	)
	switch msgType {
	case schema.MessageNewOrder:
		msg, parsed = DecodeNewOrder(payload)
	case schema.MessageDeleteOrder:
		msg, parsed = DecodeDeleteOrder(payload)
	case schema.MessageModifyOrderQuantity:
		msg, parsed = DecodeModifyOrderQuantity(payload)
	case schema.MessageTrade:
		msg, parsed = DecodeTrade(payload)
	case schema.MessageOrderResponse:
		msg, parsed = DecodeOrderResponse(payload)
	}
	if !parsed {
		return nil, exception.ErrMalformedMessage
	}
	return msg, nil
}

// EncodePayload serializes any message into its fixed-size payload.
func EncodePayload(dst []byte, msg schema.Message) []byte {
	switch m := msg.(type) {
	case schema.NewOrder:
		return EncodeNewOrder(dst, m)
	case schema.DeleteOrder:
		return EncodeDeleteOrder(dst, m)
	case schema.ModifyOrderQuantity:
		return EncodeModifyOrderQuantity(dst, m)
	case schema.Trade:
		return EncodeTrade(dst, m)
	case schema.OrderResponse:
		return EncodeOrderResponse(dst, m)
	default:
		return dst[:0]
	}
}

// EncodeFrame writes header and payload into one contiguous buffer. The header's payload
// size is overwritten with the fixed size of msg.
func EncodeFrame(dst []byte, h schema.Header, msg schema.Message) []byte {
	size := schema.PayloadSize(msg.Type())
	total := HeaderSize + size
	if cap(dst) < total {
		dst = make([]byte, total)
	} else {
		dst = dst[:total]
	}

	h.PayloadSize = uint16(size)
	EncodeHeader(dst[:HeaderSize], h)
	EncodePayload(dst[HeaderSize:HeaderSize], msg)

	return dst
}
