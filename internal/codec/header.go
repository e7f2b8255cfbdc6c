package codec

import (
	"encoding/binary"

	"riskgate/internal/schema"
)

const HeaderSize = schema.HeaderSize

// EncodeHeader serializes a header into a fixed-size buffer.
func EncodeHeader(dst []byte, h schema.Header) []byte {
	if cap(dst) < HeaderSize {
		dst = make([]byte, HeaderSize)
	} else {
		dst = dst[:HeaderSize]
	}

	binary.LittleEndian.PutUint16(dst[0:2], h.Version)
	binary.LittleEndian.PutUint16(dst[2:4], h.PayloadSize)
	binary.LittleEndian.PutUint32(dst[4:8], h.SequenceNumber)
	binary.LittleEndian.PutUint64(dst[8:16], h.Timestamp)

	return dst
}

// DecodeHeader parses a fixed-size header.
func DecodeHeader(src []byte) (schema.Header, bool) {
	if len(src) < HeaderSize {
		return schema.Header{}, false
	}
	return schema.Header{
		Version:        binary.LittleEndian.Uint16(src[0:2]),
		PayloadSize:    binary.LittleEndian.Uint16(src[2:4]),
		SequenceNumber: binary.LittleEndian.Uint32(src[4:8]),
		Timestamp:      binary.LittleEndian.Uint64(src[8:16]),
	}, true
}
