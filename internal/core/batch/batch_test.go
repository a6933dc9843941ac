package batch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobengine/internal/core"
	"lobengine/internal/core/batch"
	"lobengine/internal/core/engine"
)

func TestSubmitPreservesInputOrderForIDs(t *testing.T) {
	e := engine.New()

	// Input order is [sell-limit, buy-market, buy-limit]; processing order
	// reorders to [buy-market, buy-limit, sell-limit] (markets first, then
	// buy-limit before sell-limit). Ids are reserved in INPUT order before
	// that reordering, so input index 0 (sell-limit) must get id 1, input
	// index 1 (buy-market) id 2, input index 2 (buy-limit) id 3 — even
	// though the market order is the first one actually processed.
	descriptors := []batch.Descriptor{
		{Side: core.Sell, Type: core.LimitOrder, Price: 101.0, Quantity: 5, Timestamp: 5},
		{Side: core.Buy, Type: core.MarketOrder, Quantity: 1, Timestamp: 1},
		{Side: core.Buy, Type: core.LimitOrder, Price: 99.0, Quantity: 5, Timestamp: 3},
	}

	ids, errs := batch.Submit(e, descriptors)
	require.Len(t, ids, 3)
	for _, err := range errs {
		assert.NoError(t, err)
	}

	assert.Equal(t, []uint64{1, 2, 3}, ids)
}

// fakeEngine records the order in which Submit*WithID was invoked, to
// verify the reordering rule without depending on engine internals. It
// hands out sequential ids from ReserveOrderID and echoes back whatever id
// each Submit*WithID call receives.
type fakeEngine struct {
	calls []string
	next  uint64
}

func (f *fakeEngine) ReserveOrderID() uint64 {
	f.next++
	return f.next
}

func (f *fakeEngine) SubmitLimitWithID(id uint64, side core.Side, price float64, quantity uint64, timestamp uint64, symbol *string) (uint64, error) {
	f.calls = append(f.calls, "limit")
	return id, nil
}

func (f *fakeEngine) SubmitMarketWithID(id uint64, side core.Side, quantity uint64, timestamp uint64, symbol *string) (uint64, error) {
	f.calls = append(f.calls, "market")
	return id, nil
}

func TestSubmitProcessesMarketsBeforeLimits(t *testing.T) {
	f := &fakeEngine{}
	descriptors := []batch.Descriptor{
		{Side: core.Buy, Type: core.LimitOrder, Price: 100.0, Quantity: 1, Timestamp: 1},
		{Side: core.Sell, Type: core.MarketOrder, Quantity: 1, Timestamp: 2},
	}

	_, _ = batch.Submit(f, descriptors)
	assert.Equal(t, []string{"market", "limit"}, f.calls)
}
