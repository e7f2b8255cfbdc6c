package risk

import "riskgate/internal/schema"

// Exposure is the view of an order the ledger needs for one call. The ledger never keeps it.
type Exposure interface {
	Side() schema.Side
	Quantity() uint64
	SetQuantity(qty uint64)
}

// Position is the per-instrument exposure and net position.
//
// BuyQty and SellQty are the sums of live order quantities on each side. NetPos is the
// running sum of executed trade quantities; positive is net long.
type Position struct {
	BuyQty  uint64
	SellQty uint64
	NetPos  int64
}

// TryAddExposure admits qty on one side if the hypothetical risk stays within the limits.
//
//	buy risk  = max(buyQty, netPos + buyQty)
//	sell risk = max(sellQty, sellQty - netPos)
//
// On rejection the position is left untouched.
func (p *Position) TryAddExposure(side schema.Side, qty uint64, limits Limits) bool {
	switch side {
	case schema.SideBuy:
		next, ok := addQty(p.BuyQty, qty)
		if !ok || exceeds(next, longBias(p.NetPos), limits.BuyThreshold) {
			return false
		}
		p.BuyQty = next
		return true
	case schema.SideSell:
		next, ok := addQty(p.SellQty, qty)
		if !ok || exceeds(next, shortBias(p.NetPos), limits.SellThreshold) {
			return false
		}
		p.SellQty = next
		return true
	default:
		return false
	}
}

// TryModifyExposure replaces the order's quantity with newQty on its side if the
// hypothetical risk stays within the limits, and commits newQty to the order.
func (p *Position) TryModifyExposure(o Exposure, newQty uint64, limits Limits) bool {
	switch o.Side() {
	case schema.SideBuy:
		next, ok := addQty(subQty(p.BuyQty, o.Quantity()), newQty)
		if !ok || exceeds(next, longBias(p.NetPos), limits.BuyThreshold) {
			return false
		}
		p.BuyQty = next
	case schema.SideSell:
		next, ok := addQty(subQty(p.SellQty, o.Quantity()), newQty)
		if !ok || exceeds(next, shortBias(p.NetPos), limits.SellThreshold) {
			return false
		}
		p.SellQty = next
	default:
		return false
	}
	o.SetQuantity(newQty)
	return true
}

// RollbackExposure removes the order's quantity from its side. It must be called exactly
// once per live order.
func (p *Position) RollbackExposure(o Exposure) {
	switch o.Side() {
	case schema.SideBuy:
		p.BuyQty = subQty(p.BuyQty, o.Quantity())
	case schema.SideSell:
		p.SellQty = subQty(p.SellQty, o.Quantity())
	}
}

// ApplyTrade adds an executed quantity to the net position. Trades are not risk checked.
func (p *Position) ApplyTrade(signedQty int64) {
	p.NetPos += signedQty
}

// exceeds reports max(qty, qty+bias) > limit without overflowing.
func exceeds(qty, bias, limit uint64) bool {
	if qty > limit {
		return true
	}
	return bias > limit-qty
}

// longBias is the part of netPos that raises buy risk.
func longBias(netPos int64) uint64 {
	if netPos <= 0 {
		return 0
	}
	return uint64(netPos)
}

// shortBias is the part of netPos that raises sell risk, i.e. -netPos when short.
func shortBias(netPos int64) uint64 {
	if netPos >= 0 {
		return 0
	}
	return uint64(-(netPos + 1)) + 1
}

func addQty(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum >= a
}

func subQty(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
