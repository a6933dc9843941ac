package orderbook

import (
	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"

	"lobengine/internal/core"
)

// Location records where a resting order lives: which side book and at
// which price level.
type Location struct {
	Side  core.Side
	Price float64
}

// OrderIndex maps an order id to its resting location. An entry exists iff
// the order is currently resting in a SideBook; it is populated on
// insert-to-book and removed on fill-to-zero or cancel. Backed by an
// ordered red-black tree (rather than a plain map) so diagnostics can walk
// resting order ids in order cheaply.
type OrderIndex struct {
	tree *rbt.Tree[uint64, Location]
}

// NewOrderIndex creates an empty index.
func NewOrderIndex() *OrderIndex {
	cmp := func(a, b uint64) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
	return &OrderIndex{tree: rbt.NewWith[uint64, Location](cmp)}
}

// Put records that orderID is resting at loc.
func (idx *OrderIndex) Put(orderID uint64, loc Location) {
	idx.tree.Put(orderID, loc)
}

// Get looks up orderID's resting location.
func (idx *OrderIndex) Get(orderID uint64) (Location, bool) {
	return idx.tree.Get(orderID)
}

// Delete removes orderID from the index. It is a no-op if absent.
func (idx *OrderIndex) Delete(orderID uint64) {
	idx.tree.Remove(orderID)
}

// Len reports the number of currently resting orders tracked.
func (idx *OrderIndex) Len() int {
	return idx.tree.Size()
}
