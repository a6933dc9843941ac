package orderbook

import (
	"github.com/tidwall/btree"

	"lobengine/internal/core"
)

// SideBook is an ordered mapping from price to PriceLevel, one per side of
// the book. It iterates best-first: descending for the buy side (best bid
// first), ascending for the sell side (best ask first). No empty PriceLevel
// is ever retained — levels are removed as soon as their last order leaves.
type SideBook struct {
	side   core.Side
	levels *btree.BTreeG[*PriceLevel]
}

// NewSideBook creates an empty SideBook for side. The backing comparator is
// reversed for the buy side so that the tree's "minimum" is the best price:
// highest for bids, lowest for asks.
func NewSideBook(side core.Side) *SideBook {
	var less func(a, b *PriceLevel) bool
	if side == core.Buy {
		less = func(a, b *PriceLevel) bool { return a.Price > b.Price }
	} else {
		less = func(a, b *PriceLevel) bool { return a.Price < b.Price }
	}
	return &SideBook{side: side, levels: btree.NewBTreeG(less)}
}

// Side reports which book side this is.
func (sb *SideBook) Side() core.Side { return sb.side }

// Best returns the best (top-of-book) level, or false if the side is empty.
func (sb *SideBook) Best() (*PriceLevel, bool) {
	return sb.levels.MinMut()
}

// Get returns the level at price if one exists, for mutation in place.
func (sb *SideBook) Get(price float64) (*PriceLevel, bool) {
	return sb.levels.GetMut(&PriceLevel{Price: price})
}

// GetOrCreate returns the level at price, creating and inserting an empty
// one if absent.
func (sb *SideBook) GetOrCreate(price float64) *PriceLevel {
	if level, ok := sb.Get(price); ok {
		return level
	}
	level := NewPriceLevel(price)
	sb.levels.Set(level)
	return level
}

// DeleteIfEmpty removes level from the book if it no longer has any resting
// orders. Must be called after any removal that might have emptied a level.
func (sb *SideBook) DeleteIfEmpty(level *PriceLevel) {
	if level.Empty() {
		sb.levels.Delete(level)
	}
}

// Len reports the number of non-empty price levels.
func (sb *SideBook) Len() int {
	return sb.levels.Len()
}

// Levels visits every level best-first, stopping early if fn returns false.
func (sb *SideBook) Levels(fn func(*PriceLevel) bool) {
	sb.levels.Scan(fn)
}

// Crosses reports whether a level at levelPrice crosses an incoming order
// of the opposite side priced at orderPrice. A sell level at p crosses a
// buy order at P iff p <= P; a buy level at p crosses a sell order at P iff
// p >= P. Equality always crosses. The side used is this SideBook's own
// side (i.e. the opposite side of the incoming order).
func (sb *SideBook) Crosses(levelPrice, orderPrice float64) bool {
	if sb.side == core.Sell {
		return levelPrice <= orderPrice
	}
	return levelPrice >= orderPrice
}
