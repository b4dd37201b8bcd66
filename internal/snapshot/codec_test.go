package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skoll/internal/book"
	"skoll/internal/common"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ob := book.New("BTC-USD")
	require.NoError(t, ob.Bids.Add(&common.Order{
		Symbol: "BTC-USD", Side: common.Buy, OrderType: common.Limit,
		Price: decimal.RequireFromString("100"), HasPrice: true,
		Quantity: decimal.RequireFromString("2"), OrderID: "b1", TsNano: 10,
	}))
	require.NoError(t, ob.Asks.Add(&common.Order{
		Symbol: "BTC-USD", Side: common.Sell, OrderType: common.Limit,
		Price: decimal.RequireFromString("101"), HasPrice: true,
		Quantity: decimal.RequireFromString("3"), OrderID: "a1", TsNano: 11,
	}))

	trigger := &common.Order{
		Symbol: "BTC-USD", Side: common.Sell, OrderType: common.StopMarket,
		TriggerPrice: decimal.RequireFromString("90"), HasTrigger: true,
		Quantity: decimal.RequireFromString("1"), OrderID: "t1", TsNano: 12,
	}

	doc := Encode(ob, []*common.Order{trigger})

	restored, triggers, err := Decode(doc)
	require.NoError(t, err)

	require.Len(t, triggers, 1)
	assert.Equal(t, "t1", triggers[0].OrderID)
	assert.True(t, triggers[0].TriggerPrice.Equal(decimal.RequireFromString("90")))

	bid, ok := restored.BestBid()
	require.True(t, ok)
	assert.True(t, bid.Equal(decimal.RequireFromString("100")))

	ask, ok := restored.BestAsk()
	require.True(t, ok)
	assert.True(t, ask.Equal(decimal.RequireFromString("101")))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc := Doc{
		Symbol: "BTC-USD",
		Bids: []LevelDoc{{
			Price: "100",
			Orders: []OrderDoc{{
				Symbol: "BTC-USD", OrderType: "limit", Side: "buy",
				Quantity: "2", OrderID: "b1", TsNano: 5,
			}},
		}},
	}

	require.NoError(t, Save(dir, doc))
	assert.FileExists(t, filepath.Join(dir, "BTC-USD.json"))

	loaded, ok := Load(dir, "BTC-USD")
	require.True(t, ok)
	require.Len(t, loaded.Bids, 1)
	assert.Equal(t, "b1", loaded.Bids[0].Orders[0].OrderID)
}

func TestLoadMissingFileIsAdvisory(t *testing.T) {
	dir := t.TempDir()
	_, ok := Load(dir, "NOPE-USD")
	assert.False(t, ok)
}

func TestLoadCorruptFileIsAdvisory(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir, "BTC-USD")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, ok := Load(dir, "BTC-USD")
	assert.False(t, ok)
}
