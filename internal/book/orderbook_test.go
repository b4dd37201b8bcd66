package book

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderBookBboAndDepth(t *testing.T) {
	ob := New("BTC-USD")
	require.NoError(t, ob.Bids.Add(limitOrder("b1", "100", "2")))
	require.NoError(t, ob.Bids.Add(limitOrder("b2", "99", "4")))
	require.NoError(t, ob.Asks.Add(limitOrder("a1", "101", "3")))

	bbo := ob.Bbo()
	assert.True(t, bbo.HasBid)
	assert.True(t, bbo.BestBid.Equal(decimal.RequireFromString("100")))
	assert.True(t, bbo.BestBidQty.Equal(decimal.RequireFromString("2")))
	assert.True(t, bbo.HasAsk)
	assert.True(t, bbo.BestAsk.Equal(decimal.RequireFromString("101")))

	depth := ob.Depth(10)
	require.Len(t, depth.Bids, 2)
	require.Len(t, depth.Asks, 1)
}

func TestOrderBookNonCrossing(t *testing.T) {
	ob := New("BTC-USD")
	assert.True(t, ob.NonCrossing())

	require.NoError(t, ob.Bids.Add(limitOrder("b1", "100", "1")))
	require.NoError(t, ob.Asks.Add(limitOrder("a1", "101", "1")))
	assert.True(t, ob.NonCrossing())
}
