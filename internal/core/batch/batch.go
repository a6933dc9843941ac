// Package batch implements the optional batch-submission entry point (spec
// §6): accept a sequence of order descriptors, assign ids in input order,
// then reorder processing for determinism before handing each descriptor to
// the engine. Reordering is an input to the engine, not a semantic
// weakening — once an order's processing begins, core/engine's single-
// submit rules are authoritative.
//
// The sort rule is carried over verbatim from the original Rust
// implementation's OrderBatch::sort (original_source/matching_engine),
// since spec.md explicitly defers to the original on exactly this
// ambiguity.
package batch

import (
	"sort"

	"lobengine/internal/core"
)

// Descriptor is one entry of a batch submission.
type Descriptor struct {
	Side      core.Side
	Type      core.OrderType
	Price     float64 // ignored for MarketOrder
	Quantity  uint64
	Timestamp uint64
	Symbol    *string
}

// Engine is the subset of core/engine.Engine that batch needs to submit
// individual orders, kept as an interface so batch has no import-cycle on
// the concrete engine package. ReserveOrderID and the WithID variants let
// batch assign ids in input order ahead of reordering for processing,
// mirroring the original Rust implementation's id-then-sort sequencing.
type Engine interface {
	ReserveOrderID() uint64
	SubmitLimitWithID(id uint64, side core.Side, price float64, quantity uint64, timestamp uint64, symbol *string) (uint64, error)
	SubmitMarketWithID(id uint64, side core.Side, quantity uint64, timestamp uint64, symbol *string) (uint64, error)
}

// entry pairs a descriptor with its input position and its pre-reserved id
// so ids can be returned in input order after the batch is internally
// reordered for processing.
type entry struct {
	inputIndex int
	orderID    uint64
	descriptor Descriptor
}

// Submit assigns order ids to every descriptor in input order — before any
// reordering, exactly as the original Rust implementation mints order_id
// ahead of OrderBatch::sort — then processes them in the following order
// for determinism:
//  1. all market orders before all limit orders
//  2. among markets, buys before sells
//  3. each group sorted by ascending timestamp
//  4. limit buys sorted by descending price, then ascending timestamp
//  5. limit sells sorted by ascending price, then ascending timestamp
//
// The returned slice of ids is in 1-to-1 correspondence with descriptors,
// i.e. in input order, regardless of processing order.
func Submit(e Engine, descriptors []Descriptor) ([]uint64, []error) {
	entries := make([]entry, len(descriptors))
	for i, d := range descriptors {
		entries[i] = entry{inputIndex: i, orderID: e.ReserveOrderID(), descriptor: d}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return less(entries[i].descriptor, entries[j].descriptor)
	})

	ids := make([]uint64, len(descriptors))
	errs := make([]error, len(descriptors))
	for _, ent := range entries {
		d := ent.descriptor
		var id uint64
		var err error
		if d.Type == core.MarketOrder {
			id, err = e.SubmitMarketWithID(ent.orderID, d.Side, d.Quantity, d.Timestamp, d.Symbol)
		} else {
			id, err = e.SubmitLimitWithID(ent.orderID, d.Side, d.Price, d.Quantity, d.Timestamp, d.Symbol)
		}
		ids[ent.inputIndex] = id
		errs[ent.inputIndex] = err
	}
	return ids, errs
}

// less implements the five-tier ordering rule above.
func less(a, b Descriptor) bool {
	aMarket := a.Type == core.MarketOrder
	bMarket := b.Type == core.MarketOrder
	if aMarket != bMarket {
		return aMarket // markets first
	}

	if aMarket {
		// 2. among markets, buys before sells
		if a.Side != b.Side {
			return a.Side == core.Buy
		}
		// 3. ascending timestamp
		return a.Timestamp < b.Timestamp
	}

	// Limit orders: split by side, since bids and asks sort oppositely.
	if a.Side != b.Side {
		return a.Side == core.Buy // buys before sells, matching the market-order tier
	}
	if a.Side == core.Buy {
		// 4. descending price, then ascending timestamp
		if a.Price != b.Price {
			return a.Price > b.Price
		}
		return a.Timestamp < b.Timestamp
	}
	// 5. ascending price, then ascending timestamp
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return a.Timestamp < b.Timestamp
}
