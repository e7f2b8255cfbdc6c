package codec

import (
	"encoding/binary"

	"riskgate/internal/schema"
)

const OrderResponsePayloadSize = schema.OrderResponseSize

// EncodeOrderResponse serializes an order response into a fixed-size payload.
func EncodeOrderResponse(dst []byte, resp schema.OrderResponse) []byte {
	if cap(dst) < OrderResponsePayloadSize {
		dst = make([]byte, OrderResponsePayloadSize)
	} else {
		dst = dst[:OrderResponsePayloadSize]
	}

	binary.LittleEndian.PutUint16(dst[0:2], uint16(schema.MessageOrderResponse))
	binary.LittleEndian.PutUint64(dst[2:10], resp.OrderID)
	binary.LittleEndian.PutUint16(dst[10:12], uint16(resp.Status))

	return dst
}

// DecodeOrderResponse parses a fixed-size order response payload.
func DecodeOrderResponse(src []byte) (schema.OrderResponse, bool) {
	if len(src) < OrderResponsePayloadSize {
		return schema.OrderResponse{}, false
	}
	return schema.OrderResponse{
		OrderID: binary.LittleEndian.Uint64(src[2:10]),
		Status:  schema.Status(binary.LittleEndian.Uint16(src[10:12])),
	}, true
}
