package risk

import (
	"sort"
)

// Book maps instrument ids to their positions. Positions are created lazily and never removed.
type Book struct {
	positions map[uint64]*Position
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{positions: make(map[uint64]*Position)}
}

// Get returns the position of an instrument if one has been created.
func (b *Book) Get(instrumentID uint64) (*Position, bool) {
	p, ok := b.positions[instrumentID]
	return p, ok
}

// GetOrCreate returns the position of an instrument, creating an empty one on first use.
func (b *Book) GetOrCreate(instrumentID uint64) *Position {
	if p, ok := b.positions[instrumentID]; ok {
		return p
	}
	p := &Position{}
	b.positions[instrumentID] = p
	return p
}

// Count returns the number of tracked instruments.
func (b *Book) Count() int {
	return len(b.positions)
}

// PositionEntry is a single instrument position entry.
type PositionEntry struct {
	InstrumentID uint64 `json:"instrumentId"`
	BuyQty       uint64 `json:"buyQty"`
	SellQty      uint64 `json:"sellQty"`
	NetPos       int64  `json:"netPos"`
}

// Snapshot returns a copy of every position ordered by instrument id.
func (b *Book) Snapshot() []PositionEntry {
	entries := make([]PositionEntry, 0, len(b.positions))
	for id, p := range b.positions {
		entries = append(entries, PositionEntry{
			InstrumentID: id,
			BuyQty:       p.BuyQty,
			SellQty:      p.SellQty,
			NetPos:       p.NetPos,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].InstrumentID < entries[j].InstrumentID
	})
	return entries
}
