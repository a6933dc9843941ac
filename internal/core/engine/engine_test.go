package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobengine/internal/core"
	"lobengine/internal/core/engine"
)

// S1 — Uncrossed book.
func TestUncrossedBook(t *testing.T) {
	e := engine.New()

	_, err := e.SubmitLimit(core.Buy, 100.0, 10, 1, nil)
	require.NoError(t, err)
	_, err = e.SubmitLimit(core.Sell, 110.0, 5, 2, nil)
	require.NoError(t, err)

	bids, asks := e.Snapshot()
	assert.Equal(t, []engine.DepthLevel{{Price: 100.0, Quantity: 10}}, bids)
	assert.Equal(t, []engine.DepthLevel{{Price: 110.0, Quantity: 5}}, asks)
	assert.Empty(t, e.Trades())
}

// S2 — Maker price on cross.
func TestMakerPriceOnCross(t *testing.T) {
	e := engine.New()

	buyID, err := e.SubmitLimit(core.Buy, 100.0, 10, 1, nil)
	require.NoError(t, err)
	sellID, err := e.SubmitLimit(core.Sell, 100.0, 5, 2, nil)
	require.NoError(t, err)

	trades := e.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, 100.0, trades[0].Price)
	assert.Equal(t, uint64(5), trades[0].Quantity)
	assert.Equal(t, buyID, trades[0].BuyOrderID)
	assert.Equal(t, sellID, trades[0].SellOrderID)
	assert.Equal(t, uint64(2), trades[0].Timestamp)

	bids, asks := e.Snapshot()
	assert.Equal(t, []engine.DepthLevel{{Price: 100.0, Quantity: 5}}, bids)
	assert.Empty(t, asks)
}

// S3 — Market buy sweeps.
func TestMarketBuySweeps(t *testing.T) {
	e := engine.New()

	_, err := e.SubmitLimit(core.Sell, 100.0, 10, 1, nil)
	require.NoError(t, err)
	_, err = e.SubmitMarket(core.Buy, 5, 2, nil)
	require.NoError(t, err)

	trades := e.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, 100.0, trades[0].Price)
	assert.Equal(t, uint64(5), trades[0].Quantity)

	bids, asks := e.Snapshot()
	assert.Empty(t, bids)
	assert.Equal(t, []engine.DepthLevel{{Price: 100.0, Quantity: 5}}, asks)
}

// S4 — Market rejection.
func TestMarketRejection(t *testing.T) {
	e := engine.New()

	_, err := e.SubmitMarket(core.Buy, 1, 1, nil)
	require.NoError(t, err)

	assert.Empty(t, e.Trades())
	bids, asks := e.Snapshot()
	assert.Empty(t, bids)
	assert.Empty(t, asks)
}

// S5 — Cancel.
func TestCancel(t *testing.T) {
	e := engine.New()

	id, err := e.SubmitLimit(core.Buy, 100.0, 10, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	assert.True(t, e.Cancel(id))
	bids, asks := e.Snapshot()
	assert.Empty(t, bids)
	assert.Empty(t, asks)

	assert.False(t, e.Cancel(id))
	assert.False(t, e.Cancel(999))
}

// S6 — Multi-level market sweep with partial fill.
func TestMultiLevelMarketSweep(t *testing.T) {
	e := engine.New()

	_, err := e.SubmitLimit(core.Sell, 101.0, 3, 1, nil)
	require.NoError(t, err)
	_, err = e.SubmitLimit(core.Sell, 102.0, 4, 2, nil)
	require.NoError(t, err)
	_, err = e.SubmitLimit(core.Sell, 103.0, 2, 3, nil)
	require.NoError(t, err)

	marketID, err := e.SubmitMarket(core.Buy, 6, 4, nil)
	require.NoError(t, err)

	trades := e.Trades()
	require.Len(t, trades, 2)
	assert.Equal(t, 101.0, trades[0].Price)
	assert.Equal(t, uint64(3), trades[0].Quantity)
	assert.Equal(t, 102.0, trades[1].Price)
	assert.Equal(t, uint64(3), trades[1].Quantity)

	_, asks := e.Snapshot()
	assert.Equal(t, []engine.DepthLevel{{Price: 102.0, Quantity: 1}, {Price: 103.0, Quantity: 2}}, asks)

	_ = marketID
}

// S7 — Time priority within a level.
func TestTimePriorityWithinLevel(t *testing.T) {
	e := engine.New()

	sellID1, err := e.SubmitLimit(core.Sell, 100.0, 2, 1, nil)
	require.NoError(t, err)
	sellID2, err := e.SubmitLimit(core.Sell, 100.0, 2, 2, nil)
	require.NoError(t, err)

	_, err = e.SubmitLimit(core.Buy, 100.0, 3, 3, nil)
	require.NoError(t, err)

	trades := e.Trades()
	require.Len(t, trades, 2)
	assert.Equal(t, sellID1, trades[0].SellOrderID)
	assert.Equal(t, uint64(2), trades[0].Quantity)
	assert.Equal(t, sellID2, trades[1].SellOrderID)
	assert.Equal(t, uint64(1), trades[1].Quantity)

	bids, asks := e.Snapshot()
	assert.Empty(t, bids)
	assert.Equal(t, []engine.DepthLevel{{Price: 100.0, Quantity: 1}}, asks)
}

func TestInvalidArguments(t *testing.T) {
	e := engine.New()

	_, err := e.SubmitLimit(core.Buy, 100.0, 0, 1, nil)
	assert.ErrorIs(t, err, engine.ErrInvalidQuantity)

	_, err = e.SubmitLimit(core.Buy, -1.0, 10, 1, nil)
	assert.ErrorIs(t, err, engine.ErrInvalidPrice)

	_, err = e.SubmitMarket(core.Buy, 0, 1, nil)
	assert.ErrorIs(t, err, engine.ErrInvalidQuantity)

	bids, asks := e.Snapshot()
	assert.Empty(t, bids)
	assert.Empty(t, asks)
}

func TestTradesLimitIsASuffix(t *testing.T) {
	e := engine.New()

	_, err := e.SubmitLimit(core.Sell, 100.0, 1, 1, nil)
	require.NoError(t, err)
	_, err = e.SubmitLimit(core.Sell, 100.0, 1, 2, nil)
	require.NoError(t, err)
	_, err = e.SubmitLimit(core.Sell, 100.0, 1, 3, nil)
	require.NoError(t, err)

	_, err = e.SubmitMarket(core.Buy, 3, 4, nil)
	require.NoError(t, err)

	all := e.Trades()
	require.Len(t, all, 3)

	last2 := e.Trades(2)
	require.Len(t, last2, 2)
	assert.Equal(t, all[1], last2[0])
	assert.Equal(t, all[2], last2[1])
}

func TestOrderAndTradeIDsAreMonotone(t *testing.T) {
	e := engine.New()

	id1, _ := e.SubmitLimit(core.Sell, 100.0, 1, 1, nil)
	id2, _ := e.SubmitLimit(core.Sell, 101.0, 1, 2, nil)
	assert.Equal(t, uint64(1), id1)
	assert.Equal(t, uint64(2), id2)

	marketID, _ := e.SubmitMarket(core.Buy, 2, 3, nil)
	assert.Equal(t, uint64(3), marketID)

	trades := e.Trades()
	require.Len(t, trades, 2)
	assert.Equal(t, uint64(1), trades[0].ID)
	assert.Equal(t, uint64(2), trades[1].ID)
}
