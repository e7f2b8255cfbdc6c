package codec

import (
	"encoding/binary"

	"riskgate/internal/schema"
)

const NewOrderPayloadSize = schema.NewOrderSize

// EncodeNewOrder serializes a new order into a fixed-size payload.
func EncodeNewOrder(dst []byte, order schema.NewOrder) []byte {
	if cap(dst) < NewOrderPayloadSize {
		dst = make([]byte, NewOrderPayloadSize)
	} else {
		dst = dst[:NewOrderPayloadSize]
	}

	binary.LittleEndian.PutUint16(dst[0:2], uint16(schema.MessageNewOrder))
	binary.LittleEndian.PutUint64(dst[2:10], order.ListingID)
	binary.LittleEndian.PutUint64(dst[10:18], order.OrderID)
	binary.LittleEndian.PutUint64(dst[18:26], order.Quantity)
	binary.LittleEndian.PutUint64(dst[26:34], order.Price)
	dst[34] = byte(order.Side)

	return dst
}

// DecodeNewOrder parses a fixed-size new order payload.
func DecodeNewOrder(src []byte) (schema.NewOrder, bool) {
	if len(src) < NewOrderPayloadSize {
		return schema.NewOrder{}, false
	}
	return schema.NewOrder{
		ListingID: binary.LittleEndian.Uint64(src[2:10]),
		OrderID:   binary.LittleEndian.Uint64(src[10:18]),
		Quantity:  binary.LittleEndian.Uint64(src[18:26]),
		Price:     binary.LittleEndian.Uint64(src[26:34]),
		Side:      schema.Side(src[34]),
	}, true
}
