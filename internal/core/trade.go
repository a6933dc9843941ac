package core

import "fmt"

// Trade is immutable once emitted: a single match between a resting order
// (the maker, whose price it executes at) and an incoming order (the taker).
type Trade struct {
	ID          uint64
	BuyOrderID  uint64
	SellOrderID uint64
	Price       float64 // always the resting order's limit price
	Quantity    uint64
	Timestamp   uint64 // max of the two participating orders' timestamps
	Symbol      *string
}

func (t Trade) String() string {
	return fmt.Sprintf(
		"Trade{id=%d buy=%d sell=%d price=%g qty=%d ts=%d}",
		t.ID, t.BuyOrderID, t.SellOrderID, t.Price, t.Quantity, t.Timestamp,
	)
}
