package codec

import (
	"encoding/binary"

	"riskgate/internal/schema"
)

const TradePayloadSize = schema.TradeSize

// EncodeTrade serializes a trade into a fixed-size payload.
func EncodeTrade(dst []byte, trade schema.Trade) []byte {
	if cap(dst) < TradePayloadSize {
		dst = make([]byte, TradePayloadSize)
	} else {
		dst = dst[:TradePayloadSize]
	}

	binary.LittleEndian.PutUint16(dst[0:2], uint16(schema.MessageTrade))
	binary.LittleEndian.PutUint64(dst[2:10], trade.ListingID)
	binary.LittleEndian.PutUint64(dst[10:18], trade.TradeID)
	binary.LittleEndian.PutUint64(dst[18:26], uint64(trade.Quantity))
	binary.LittleEndian.PutUint64(dst[26:34], trade.Price)

	return dst
}

// DecodeTrade parses a fixed-size trade payload.
func DecodeTrade(src []byte) (schema.Trade, bool) {
	if len(src) < TradePayloadSize {
		return schema.Trade{}, false
	}
	return schema.Trade{
		ListingID: binary.LittleEndian.Uint64(src[2:10]),
		TradeID:   binary.LittleEndian.Uint64(src[10:18]),
		Quantity:  int64(binary.LittleEndian.Uint64(src[18:26])),
		Price:     binary.LittleEndian.Uint64(src[26:34]),
	}, true
}
