package engine

import (
	"lobengine/internal/core"
	"lobengine/internal/core/orderbook"
)

// matchLimit walks the opposite side book best-first, consuming crossing
// levels, stopping as soon as the crossing condition fails or taker is
// filled. Grounded on fenrir's OrderBook.Match sweep loop.
func (e *Engine) matchLimit(taker *core.Order) {
	opposite := e.oppositeBook(taker.Side)
	for taker.RemainingQuantity > 0 {
		level, ok := opposite.Best()
		if !ok || !opposite.Crosses(level.Price, taker.Price) {
			break
		}
		e.consumeLevel(taker, level, opposite)
	}
}

// matchMarket sweeps the opposite side book unconditionally (no price
// check) until the taker is filled or the book is exhausted. The residue,
// if any, is left on the order and the order is never inserted into a book.
func (e *Engine) matchMarket(taker *core.Order) {
	opposite := e.oppositeBook(taker.Side)
	for taker.RemainingQuantity > 0 {
		level, ok := opposite.Best()
		if !ok {
			break
		}
		e.consumeLevel(taker, level, opposite)
	}
}

// consumeLevel walks level's resting orders in FIFO order, matching each
// against taker until either taker is filled or the level empties. Shared
// by both limit and market matching, since §4.3/§4.4 of the spec describe
// the same per-level FIFO walk for both order types.
func (e *Engine) consumeLevel(taker *core.Order, level *orderbook.PriceLevel, book *orderbook.SideBook) {
	for taker.RemainingQuantity > 0 && !level.Empty() {
		maker := level.Front()
		qty := min(taker.RemainingQuantity, maker.RemainingQuantity)

		e.emitTrade(taker, maker, level.Price, qty)

		taker.Fill(qty)
		maker.Fill(qty)
		level.SubtractFill(qty)

		if maker.RemainingQuantity == 0 {
			level.PopFront()
			e.index.Delete(maker.ID)
		}
	}
	book.DeleteIfEmpty(level)
}

// emitTrade assigns the next trade id, appends to the trade log in
// emission order, and notifies the reporter if one is attached. price is
// always the resting (maker) order's price, never the taker's.
func (e *Engine) emitTrade(taker, maker *core.Order, price float64, qty uint64) {
	e.nextTradeID++

	var buyID, sellID uint64
	if taker.Side == core.Buy {
		buyID, sellID = taker.ID, maker.ID
	} else {
		buyID, sellID = maker.ID, taker.ID
	}

	trade := core.Trade{
		ID:          e.nextTradeID,
		BuyOrderID:  buyID,
		SellOrderID: sellID,
		Price:       price,
		Quantity:    qty,
		Timestamp:   maxU64(taker.Timestamp, maker.Timestamp),
		Symbol:      firstSymbol(taker.Symbol, maker.Symbol),
	}
	e.trades = append(e.trades, trade)

	e.log.Debug().
		Uint64("tradeID", trade.ID).
		Uint64("buyOrderID", buyID).
		Uint64("sellOrderID", sellID).
		Float64("price", price).
		Uint64("quantity", qty).
		Msg("trade executed")

	if e.reporter != nil {
		e.reporter.ReportTrade(trade)
	}
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func firstSymbol(a, b *string) *string {
	if a != nil {
		return a
	}
	return b
}
