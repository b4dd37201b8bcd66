package transport

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skoll/internal/common"
)

func strp(s string) *string { return &s }

func TestToOrderValidLimit(t *testing.T) {
	req := SubmitRequest{Symbol: "BTC-USD", OrderType: "limit", Side: "buy", Quantity: "1.5", Price: strp("100.25")}
	order, err := req.ToOrder()
	require.NoError(t, err)
	assert.Equal(t, common.Limit, order.OrderType)
	assert.Equal(t, common.Buy, order.Side)
	assert.True(t, order.HasPrice)
}

func TestToOrderRejectsMissingPriceForLimit(t *testing.T) {
	req := SubmitRequest{Symbol: "BTC-USD", OrderType: "limit", Side: "buy", Quantity: "1"}
	_, err := req.ToOrder()
	require.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}

func TestToOrderRejectsMissingTriggerForStopMarket(t *testing.T) {
	req := SubmitRequest{Symbol: "BTC-USD", OrderType: "stop_market", Side: "sell", Quantity: "1"}
	_, err := req.ToOrder()
	require.Error(t, err)
}

func TestToOrderRejectsUnknownOrderType(t *testing.T) {
	req := SubmitRequest{Symbol: "BTC-USD", OrderType: "bogus", Side: "buy", Quantity: "1"}
	_, err := req.ToOrder()
	require.Error(t, err)
}

func TestToOrderRejectsNonPositiveQuantity(t *testing.T) {
	req := SubmitRequest{Symbol: "BTC-USD", OrderType: "market", Side: "buy", Quantity: "0"}
	_, err := req.ToOrder()
	require.Error(t, err)
}

func TestToOrderMarketNeedsNoPrice(t *testing.T) {
	req := SubmitRequest{Symbol: "BTC-USD", OrderType: "market", Side: "sell", Quantity: "1"}
	order, err := req.ToOrder()
	require.NoError(t, err)
	assert.False(t, order.HasPrice)
}

func TestBuildAckReflectsTrades(t *testing.T) {
	trades := []common.Trade{{TradeID: "t1", Price: decimal.RequireFromString("100"), Quantity: decimal.RequireFromString("1"), MakerOrderID: "m1", TakerOrderID: "k1"}}
	ack := buildAck("k1", nil, trades)
	require.Len(t, ack.Trades, 1)
	assert.Equal(t, "t1", ack.Trades[0].TradeID)
	assert.False(t, ack.Resting)
}

func TestTradeDocCarriesOwners(t *testing.T) {
	trade := common.Trade{
		TradeID: "t1", Price: decimal.RequireFromString("100"), Quantity: decimal.RequireFromString("1"),
		MakerOrderID: "m1", TakerOrderID: "k1", MakerOwner: "alice", TakerOwner: "bob",
	}
	doc := tradeDoc(trade)
	assert.Equal(t, "alice", doc.MakerOwner)
	assert.Equal(t, "bob", doc.TakerOwner)
}
