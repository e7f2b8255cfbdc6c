package codec

import (
	"encoding/binary"

	"riskgate/internal/schema"
)

const DeleteOrderPayloadSize = schema.DeleteOrderSize

// EncodeDeleteOrder serializes a delete request into a fixed-size payload.
func EncodeDeleteOrder(dst []byte, order schema.DeleteOrder) []byte {
	if cap(dst) < DeleteOrderPayloadSize {
		dst = make([]byte, DeleteOrderPayloadSize)
	} else {
		dst = dst[:DeleteOrderPayloadSize]
	}

	binary.LittleEndian.PutUint16(dst[0:2], uint16(schema.MessageDeleteOrder))
	binary.LittleEndian.PutUint64(dst[2:10], order.OrderID)

	return dst
}

// DecodeDeleteOrder parses a fixed-size delete payload.
func DecodeDeleteOrder(src []byte) (schema.DeleteOrder, bool) {
	if len(src) < DeleteOrderPayloadSize {
		return schema.DeleteOrder{}, false
	}
	return schema.DeleteOrder{
		OrderID: binary.LittleEndian.Uint64(src[2:10]),
	}, true
}
