// Package orderbook implements the per-side price-sorted book: PriceLevel
// FIFO queues, the SideBook that orders them best-first, and the
// OrderIndex used to locate a resting order for cancellation.
package orderbook

import "lobengine/internal/core"

// PriceLevel is a FIFO queue of resting orders sharing one price, with a
// cached aggregate resting quantity. Orders are appended at the tail and
// consumed from the head, so arrival order at a level is insertion order,
// never the orders' Timestamp field.
type PriceLevel struct {
	Price             float64
	Orders            []*core.Order
	AggregateQuantity uint64
}

// NewPriceLevel creates an empty level at price.
func NewPriceLevel(price float64) *PriceLevel {
	return &PriceLevel{Price: price}
}

// Push appends order to the tail of the queue.
func (l *PriceLevel) Push(o *core.Order) {
	l.Orders = append(l.Orders, o)
	l.AggregateQuantity += o.RemainingQuantity
}

// Front returns the head of the queue, or nil if empty.
func (l *PriceLevel) Front() *core.Order {
	if len(l.Orders) == 0 {
		return nil
	}
	return l.Orders[0]
}

// PopFront removes and returns the head of the queue.
func (l *PriceLevel) PopFront() *core.Order {
	o := l.Orders[0]
	l.Orders = l.Orders[1:]
	return o
}

// Empty reports whether the level has no resting orders left.
func (l *PriceLevel) Empty() bool {
	return len(l.Orders) == 0
}

// Remove deletes the order with the given id from the queue, preserving the
// relative order of the remainder, and updates the aggregate quantity.
// Reports whether an order was found.
func (l *PriceLevel) Remove(orderID uint64) (*core.Order, bool) {
	for i, o := range l.Orders {
		if o.ID == orderID {
			l.AggregateQuantity -= o.RemainingQuantity
			l.Orders = append(l.Orders[:i], l.Orders[i+1:]...)
			return o, true
		}
	}
	return nil, false
}

// SubtractFill lowers the level's cached aggregate quantity by qty, called
// whenever a resting order at this level is partially or fully matched.
func (l *PriceLevel) SubtractFill(qty uint64) {
	l.AggregateQuantity -= qty
}
