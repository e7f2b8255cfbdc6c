package codec

import (
	"encoding/binary"

	"riskgate/internal/schema"
)

const ModifyOrderQuantityPayloadSize = schema.ModifyOrderQuantitySize

// EncodeModifyOrderQuantity serializes a quantity change into a fixed-size payload.
func EncodeModifyOrderQuantity(dst []byte, modify schema.ModifyOrderQuantity) []byte {
	if cap(dst) < ModifyOrderQuantityPayloadSize {
		dst = make([]byte, ModifyOrderQuantityPayloadSize)
	} else {
		dst = dst[:ModifyOrderQuantityPayloadSize]
	}

	binary.LittleEndian.PutUint16(dst[0:2], uint16(schema.MessageModifyOrderQuantity))
	binary.LittleEndian.PutUint64(dst[2:10], modify.OrderID)
	binary.LittleEndian.PutUint64(dst[10:18], modify.NewQuantity)

	return dst
}

// DecodeModifyOrderQuantity parses a fixed-size quantity change payload.
func DecodeModifyOrderQuantity(src []byte) (schema.ModifyOrderQuantity, bool) {
	if len(src) < ModifyOrderQuantityPayloadSize {
		return schema.ModifyOrderQuantity{}, false
	}
	return schema.ModifyOrderQuantity{
		OrderID:     binary.LittleEndian.Uint64(src[2:10]),
		NewQuantity: binary.LittleEndian.Uint64(src[10:18]),
	}, true
}
