package common

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMarketOrderAlwaysCrossable(t *testing.T) {
	o := Order{OrderType: Market}
	assert.True(t, o.Crossable(decimal.RequireFromString("12345.6789")))
}

func TestLimitBuyCrossesAtOrBelowOwnPrice(t *testing.T) {
	o := Order{OrderType: Limit, Side: Buy, Price: decimal.RequireFromString("100"), HasPrice: true}
	assert.True(t, o.Crossable(decimal.RequireFromString("99")))
	assert.True(t, o.Crossable(decimal.RequireFromString("100")))
	assert.False(t, o.Crossable(decimal.RequireFromString("101")))
}

func TestLimitSellCrossesAtOrAboveOwnPrice(t *testing.T) {
	o := Order{OrderType: Limit, Side: Sell, Price: decimal.RequireFromString("100"), HasPrice: true}
	assert.True(t, o.Crossable(decimal.RequireFromString("101")))
	assert.True(t, o.Crossable(decimal.RequireFromString("100")))
	assert.False(t, o.Crossable(decimal.RequireFromString("99")))
}

func TestOrderWithNoPriceNeverCrosses(t *testing.T) {
	o := Order{OrderType: Limit, Side: Buy}
	assert.False(t, o.Crossable(decimal.RequireFromString("1")))
}

func TestClonePreservesIdentity(t *testing.T) {
	o := Order{OrderID: "abc", TsNano: 42, Quantity: decimal.RequireFromString("5")}
	clone := o.Clone(decimal.RequireFromString("2"))

	assert.Equal(t, "abc", clone.OrderID)
	assert.Equal(t, int64(42), clone.TsNano)
	assert.True(t, clone.Quantity.Equal(decimal.RequireFromString("2")))
}

func TestOrderTypeIsTrigger(t *testing.T) {
	assert.True(t, StopMarket.IsTrigger())
	assert.True(t, StopLimit.IsTrigger())
	assert.True(t, TakeProfit.IsTrigger())
	assert.False(t, Limit.IsTrigger())
	assert.False(t, Market.IsTrigger())
}
