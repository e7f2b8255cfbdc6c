package order

import (
	"sort"

	"riskgate/internal/schema"
	"riskgate/pkg/exception"
)

// ConnID identifies one client connection for the lifetime of the process.
type ConnID uint64

// Order holds the gateway's view of a live order. Price and side never change after
// creation; Qty changes only through SetQuantity.
type Order struct {
	ID           uint64
	InstrumentID uint64
	Qty          uint64
	Price        uint64
	Owner        ConnID

	side schema.Side
}

// New builds an order from an admitted NewOrder request.
func New(req schema.NewOrder) *Order {
	return &Order{
		ID:           req.OrderID,
		InstrumentID: req.ListingID,
		Qty:          req.Quantity,
		Price:        req.Price,
		side:         req.Side,
	}
}

func (o *Order) Side() schema.Side      { return o.side }
func (o *Order) Quantity() uint64       { return o.Qty }
func (o *Order) SetQuantity(qty uint64) { o.Qty = qty }

// Store maps order ids to orders and connections to the ids they opened.
// It holds no risk logic and no locks; a single goroutine owns it.
type Store struct {
	orders map[uint64]*Order
	conns  map[ConnID]map[uint64]struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		orders: make(map[uint64]*Order),
		conns:  make(map[ConnID]map[uint64]struct{}),
	}
}

// OpenConnection starts bookkeeping for a connection. Opening twice is a no-op.
func (s *Store) OpenConnection(conn ConnID) {
	if _, ok := s.conns[conn]; ok {
		return
	}
	s.conns[conn] = make(map[uint64]struct{})
}

// CreateOrder inserts a new order and records it under its owning connection.
func (s *Store) CreateOrder(conn ConnID, o *Order) error {
	if o == nil {
		return exception.ErrNilInstance
	}
	if _, ok := s.orders[o.ID]; ok {
		return exception.ErrDuplicateOrder
	}
	o.Owner = conn
	s.orders[o.ID] = o
	s.OpenConnection(conn)
	s.conns[conn][o.ID] = struct{}{}
	return nil
}

// FindOrder returns a live order.
func (s *Store) FindOrder(id uint64) (*Order, bool) {
	o, ok := s.orders[id]
	return o, ok
}

// DeleteOrder removes an order and its id from the owning connection's set.
// The caller must have rolled back its exposure first.
func (s *Store) DeleteOrder(id uint64) {
	o, ok := s.orders[id]
	if !ok {
		return
	}
	delete(s.orders, id)
	if set, ok := s.conns[o.Owner]; ok {
		delete(set, id)
	}
}

// OrdersOf returns the live order ids opened through a connection, in ascending order.
func (s *Store) OrdersOf(conn ConnID) []uint64 {
	set := s.conns[conn]
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DropConnection removes a connection's bookkeeping. Its orders must already be deleted.
func (s *Store) DropConnection(conn ConnID) {
	delete(s.conns, conn)
}

// Len returns the number of live orders.
func (s *Store) Len() int {
	return len(s.orders)
}

// Connections returns the number of connections with bookkeeping.
func (s *Store) Connections() int {
	return len(s.conns)
}

// Orders returns every live order in ascending id order.
func (s *Store) Orders() []*Order {
	out := make([]*Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
