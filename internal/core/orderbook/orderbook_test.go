package orderbook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobengine/internal/core"
	"lobengine/internal/core/orderbook"
)

func TestSideBookBestFirstOrdering(t *testing.T) {
	bids := orderbook.NewSideBook(core.Buy)
	bids.GetOrCreate(98.0)
	bids.GetOrCreate(100.0)
	bids.GetOrCreate(99.0)

	var prices []float64
	bids.Levels(func(l *orderbook.PriceLevel) bool {
		prices = append(prices, l.Price)
		return true
	})
	assert.Equal(t, []float64{100.0, 99.0, 98.0}, prices)

	asks := orderbook.NewSideBook(core.Sell)
	asks.GetOrCreate(102.0)
	asks.GetOrCreate(100.0)
	asks.GetOrCreate(101.0)

	prices = nil
	asks.Levels(func(l *orderbook.PriceLevel) bool {
		prices = append(prices, l.Price)
		return true
	})
	assert.Equal(t, []float64{100.0, 101.0, 102.0}, prices)
}

func TestSideBookCrosses(t *testing.T) {
	asks := orderbook.NewSideBook(core.Sell)
	assert.True(t, asks.Crosses(100.0, 100.0))
	assert.True(t, asks.Crosses(99.0, 100.0))
	assert.False(t, asks.Crosses(101.0, 100.0))

	bids := orderbook.NewSideBook(core.Buy)
	assert.True(t, bids.Crosses(100.0, 100.0))
	assert.True(t, bids.Crosses(101.0, 100.0))
	assert.False(t, bids.Crosses(99.0, 100.0))
}

func TestPriceLevelFIFOAndRemove(t *testing.T) {
	level := orderbook.NewPriceLevel(100.0)
	o1 := &core.Order{ID: 1, RemainingQuantity: 5}
	o2 := &core.Order{ID: 2, RemainingQuantity: 3}
	o3 := &core.Order{ID: 3, RemainingQuantity: 2}
	level.Push(o1)
	level.Push(o2)
	level.Push(o3)
	assert.Equal(t, uint64(10), level.AggregateQuantity)

	removed, ok := level.Remove(2)
	require.True(t, ok)
	assert.Equal(t, o2, removed)
	assert.Equal(t, uint64(7), level.AggregateQuantity)

	assert.Equal(t, o1, level.Front())
	head := level.PopFront()
	assert.Equal(t, o1, head)
	assert.Equal(t, o3, level.Front())

	_, ok = level.Remove(999)
	assert.False(t, ok)
}

func TestSideBookDeleteIfEmpty(t *testing.T) {
	bids := orderbook.NewSideBook(core.Buy)
	level := bids.GetOrCreate(100.0)
	o := &core.Order{ID: 1, RemainingQuantity: 1}
	level.Push(o)

	level.PopFront()
	bids.DeleteIfEmpty(level)

	_, ok := bids.Get(100.0)
	assert.False(t, ok)
	assert.Equal(t, 0, bids.Len())
}

func TestOrderIndexPutGetDelete(t *testing.T) {
	idx := orderbook.NewOrderIndex()
	idx.Put(1, orderbook.Location{Side: core.Buy, Price: 100.0})

	loc, ok := idx.Get(1)
	require.True(t, ok)
	assert.Equal(t, core.Buy, loc.Side)
	assert.Equal(t, 100.0, loc.Price)

	idx.Delete(1)
	_, ok = idx.Get(1)
	assert.False(t, ok)
}
