package schema

// Fixed payload sizes in bytes, including the two-byte message type.
const (
	HeaderSize              = 16
	NewOrderSize            = 35
	DeleteOrderSize         = 10
	ModifyOrderQuantitySize = 18
	TradeSize               = 34
	OrderResponseSize       = 12
)

// Side describes order direction. The values are the wire bytes.
type Side byte

const (
	SideBuy  Side = 'B'
	SideSell Side = 'S'
)

// Valid reports whether the side is one of the two wire values.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// Status is the outcome carried by an OrderResponse.
type Status uint16

const (
	StatusAccepted Status = 0
	StatusRejected Status = 1
)

func (s Status) String() string {
	if s == StatusAccepted {
		return "accepted"
	}
	return "rejected"
}

// Message is one decoded payload.
type Message interface {
	Type() MessageType
}

var (
	_ Message = NewOrder{}
	_ Message = DeleteOrder{}
	_ Message = ModifyOrderQuantity{}
	_ Message = Trade{}
	_ Message = OrderResponse{}
)

// NewOrder asks the gateway to admit a new order.
type NewOrder struct {
	ListingID uint64
	OrderID   uint64
	Quantity  uint64
	Price     uint64
	Side      Side
}

func (NewOrder) Type() MessageType { return MessageNewOrder }

// DeleteOrder removes a live order.
type DeleteOrder struct {
	OrderID uint64
}

func (DeleteOrder) Type() MessageType { return MessageDeleteOrder }

// ModifyOrderQuantity changes the quantity of a live order.
type ModifyOrderQuantity struct {
	OrderID     uint64
	NewQuantity uint64
}

func (ModifyOrderQuantity) Type() MessageType { return MessageModifyOrderQuantity }

// Trade reports an executed fill. Quantity is signed: positive buys, negative sells.
type Trade struct {
	ListingID uint64
	TradeID   uint64
	Quantity  int64
	Price     uint64
}

func (Trade) Type() MessageType { return MessageTrade }

// OrderResponse is sent by the server only.
type OrderResponse struct {
	OrderID uint64
	Status  Status
}

func (OrderResponse) Type() MessageType { return MessageOrderResponse }
