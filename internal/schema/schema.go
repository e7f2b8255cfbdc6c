package schema

// ProtocolVersion is the header version written by clients of this gateway.
const ProtocolVersion uint16 = 0

// MessageType is the discriminator carried in the first two bytes of every payload.
type MessageType uint16

const (
	MessageUnknown MessageType = iota
	MessageNewOrder
	MessageDeleteOrder
	MessageModifyOrderQuantity
	MessageTrade
	MessageOrderResponse
)

func (t MessageType) String() string {
	switch t {
	case MessageNewOrder:
		return "new_order"
	case MessageDeleteOrder:
		return "delete_order"
	case MessageModifyOrderQuantity:
		return "modify_order_quantity"
	case MessageTrade:
		return "trade"
	case MessageOrderResponse:
		return "order_response"
	default:
		return "unknown"
	}
}

// Header precedes every request and every response on the wire.
type Header struct {
	Version        uint16
	PayloadSize    uint16
	SequenceNumber uint32
	Timestamp      uint64
}

// NewHeader builds a request header for a payload of the given type.
func NewHeader(msgType MessageType, seq uint32, tsNanos uint64) Header {
	return Header{
		Version:        ProtocolVersion,
		PayloadSize:    uint16(PayloadSize(msgType)),
		SequenceNumber: seq,
		Timestamp:      tsNanos,
	}
}

// PayloadSize returns the fixed payload length for a message type, or 0 if unknown.
func PayloadSize(t MessageType) int {
	switch t {
	case MessageNewOrder:
		return NewOrderSize
	case MessageDeleteOrder:
		return DeleteOrderSize
	case MessageModifyOrderQuantity:
		return ModifyOrderQuantitySize
	case MessageTrade:
		return TradeSize
	case MessageOrderResponse:
		return OrderResponseSize
	default:
		return 0
	}
}
