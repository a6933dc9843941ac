// Package engine implements the MatchingEngine façade: it assigns order and
// trade ids, drives the matching state machine over a pair of SideBooks,
// and exposes snapshot/trade-log queries. The engine is a sequential state
// machine — every public method runs to completion before another begins;
// callers sharing one instance across goroutines must serialize access
// themselves, the same way fenrir's transport layer serializes writes
// through its session handler.
package engine

import (
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lobengine/internal/core"
	"lobengine/internal/core/orderbook"
)

// Reporter receives a callback after each trade commits to the log. It is
// purely an observer: it cannot roll back a trade. It is called
// synchronously from inside the match, so a slow reporter delays matching.
type Reporter interface {
	ReportTrade(trade core.Trade)
}

// DepthLevel is one row of an aggregated snapshot: the resting quantity at
// a single price.
type DepthLevel struct {
	Price    float64
	Quantity uint64
}

// Engine is a single-symbol matching engine. Symbol tags on individual
// orders ride along but never affect matching; routing across symbols is a
// caller concern (spec scope: one Engine per symbol).
type Engine struct {
	bids  *orderbook.SideBook
	asks  *orderbook.SideBook
	index *orderbook.OrderIndex

	nextOrderID uint64
	nextTradeID uint64
	trades      []core.Trade

	reporter Reporter
	log      zerolog.Logger
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithReporter attaches a Reporter invoked after every trade commits.
func WithReporter(r Reporter) Option {
	return func(e *Engine) { e.reporter = r }
}

// WithLogger overrides the engine's zerolog logger (defaults to the global
// logger, matching fenrir's package-level `log` usage).
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an empty engine with no resting orders and an empty trade log.
func New(opts ...Option) *Engine {
	e := &Engine{
		bids:  orderbook.NewSideBook(core.Buy),
		asks:  orderbook.NewSideBook(core.Sell),
		index: orderbook.NewOrderIndex(),
		log:   log.Logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetReporter attaches or replaces the trade reporter after construction.
func (e *Engine) SetReporter(r Reporter) {
	e.reporter = r
}

func (e *Engine) sideBook(side core.Side) *orderbook.SideBook {
	if side == core.Buy {
		return e.bids
	}
	return e.asks
}

func (e *Engine) oppositeBook(side core.Side) *orderbook.SideBook {
	if side == core.Buy {
		return e.asks
	}
	return e.bids
}

func (e *Engine) assignOrderID() uint64 {
	e.nextOrderID++
	return e.nextOrderID
}

// ReserveOrderID mints the next order id without submitting anything. It
// lets a caller that reorders submissions (core/batch) assign ids in its
// own input order ahead of processing order, then thread each reserved id
// through to SubmitLimitWithID/SubmitMarketWithID.
func (e *Engine) ReserveOrderID() uint64 {
	return e.assignOrderID()
}

// SubmitLimit submits a limit order, assigning it the next order id.
// Quantity must be strictly positive and price finite and strictly
// positive, checked before any state changes. The order is matched against
// the opposite side book immediately; any residue rests in its own side
// book.
func (e *Engine) SubmitLimit(side core.Side, price float64, quantity uint64, timestamp uint64, symbol *string) (uint64, error) {
	if quantity == 0 {
		return 0, ErrInvalidQuantity
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, ErrInvalidPrice
	}
	return e.SubmitLimitWithID(e.assignOrderID(), side, price, quantity, timestamp, symbol)
}

// SubmitLimitWithID submits a limit order under a previously reserved id
// (see ReserveOrderID), instead of minting a new one. Validation and
// matching are otherwise identical to SubmitLimit.
func (e *Engine) SubmitLimitWithID(id uint64, side core.Side, price float64, quantity uint64, timestamp uint64, symbol *string) (uint64, error) {
	if quantity == 0 {
		return 0, ErrInvalidQuantity
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, ErrInvalidPrice
	}

	order := &core.Order{
		ID:                id,
		Side:              side,
		Type:              core.LimitOrder,
		Price:             price,
		Quantity:          quantity,
		RemainingQuantity: quantity,
		Status:            core.New,
		Timestamp:         timestamp,
		Symbol:            symbol,
	}

	e.matchLimit(order)

	if order.RemainingQuantity > 0 {
		book := e.sideBook(side)
		level := book.GetOrCreate(price)
		level.Push(order)
		e.index.Put(id, orderbook.Location{Side: side, Price: price})
	}

	e.log.Debug().
		Uint64("orderID", id).
		Str("side", side.String()).
		Float64("price", price).
		Uint64("quantity", quantity).
		Str("status", order.Status.String()).
		Msg("submitted limit order")

	return id, nil
}

// SubmitMarket submits a market order, assigning it the next order id. It
// sweeps the opposite side book immediately and never rests, regardless of
// residue: full fill, partial fill and zero-liquidity rejection are all
// normal, non-error outcomes.
func (e *Engine) SubmitMarket(side core.Side, quantity uint64, timestamp uint64, symbol *string) (uint64, error) {
	if quantity == 0 {
		return 0, ErrInvalidQuantity
	}
	return e.SubmitMarketWithID(e.assignOrderID(), side, quantity, timestamp, symbol)
}

// SubmitMarketWithID submits a market order under a previously reserved id
// (see ReserveOrderID), instead of minting a new one. Otherwise identical
// to SubmitMarket.
func (e *Engine) SubmitMarketWithID(id uint64, side core.Side, quantity uint64, timestamp uint64, symbol *string) (uint64, error) {
	if quantity == 0 {
		return 0, ErrInvalidQuantity
	}

	order := &core.Order{
		ID:                id,
		Side:              side,
		Type:              core.MarketOrder,
		Quantity:          quantity,
		RemainingQuantity: quantity,
		Status:            core.New,
		Timestamp:         timestamp,
		Symbol:            symbol,
	}

	e.matchMarket(order)

	if order.FilledQuantity == 0 {
		order.Status = core.Rejected
		e.log.Debug().Uint64("orderID", id).Msg("market order rejected: no liquidity")
	}

	return id, nil
}

// Cancel removes a resting order from the book. Returns false for an
// unknown id or one that is not currently resting; a second call on an
// already-cancelled id likewise returns false with no state change.
func (e *Engine) Cancel(orderID uint64) bool {
	loc, ok := e.index.Get(orderID)
	if !ok {
		return false
	}
	book := e.sideBook(loc.Side)
	level, ok := book.Get(loc.Price)
	if !ok {
		return false
	}
	order, ok := level.Remove(orderID)
	if !ok {
		return false
	}
	book.DeleteIfEmpty(level)
	e.index.Delete(orderID)
	order.Status = core.Cancelled

	e.log.Debug().Uint64("orderID", orderID).Msg("cancelled order")
	return true
}

// Snapshot returns the aggregated depth of both sides: bids descending by
// price (best bid first), asks ascending (best ask first).
func (e *Engine) Snapshot() (bids, asks []DepthLevel) {
	e.bids.Levels(func(l *orderbook.PriceLevel) bool {
		bids = append(bids, DepthLevel{Price: l.Price, Quantity: l.AggregateQuantity})
		return true
	})
	e.asks.Levels(func(l *orderbook.PriceLevel) bool {
		asks = append(asks, DepthLevel{Price: l.Price, Quantity: l.AggregateQuantity})
		return true
	})
	return bids, asks
}

// Trades returns the trade log in emission order. With no argument it
// returns the whole log; with a limit it returns at most the last limit
// trades (a suffix).
func (e *Engine) Trades(limit ...int) []core.Trade {
	if len(limit) == 0 || limit[0] <= 0 || limit[0] >= len(e.trades) {
		out := make([]core.Trade, len(e.trades))
		copy(out, e.trades)
		return out
	}
	n := limit[0]
	out := make([]core.Trade, n)
	copy(out, e.trades[len(e.trades)-n:])
	return out
}
