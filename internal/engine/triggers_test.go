package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"skoll/internal/common"
)

func TestFiresStopMarketBuy(t *testing.T) {
	t1 := &common.Order{OrderType: common.StopMarket, Side: common.Buy, TriggerPrice: dec("100"), HasTrigger: true}
	assert.False(t, fires(t1, dec("99")))
	assert.True(t, fires(t1, dec("100")))
	assert.True(t, fires(t1, dec("101")))
}

func TestFiresStopMarketSell(t *testing.T) {
	t1 := &common.Order{OrderType: common.StopMarket, Side: common.Sell, TriggerPrice: dec("100"), HasTrigger: true}
	assert.True(t, fires(t1, dec("99")))
	assert.True(t, fires(t1, dec("100")))
	assert.False(t, fires(t1, dec("101")))
}

func TestFiresTakeProfitSell(t *testing.T) {
	t1 := &common.Order{OrderType: common.TakeProfit, Side: common.Sell, TriggerPrice: dec("100"), HasTrigger: true}
	assert.True(t, fires(t1, dec("100")))
	assert.False(t, fires(t1, dec("99")))
}

func TestConvertTriggerStopLimitUsesOwnPrice(t *testing.T) {
	e := New(Config{}, nil, WithClock(fakeClock()))
	trig := &common.Order{
		Symbol: "BTC-USD", Side: common.Buy, OrderType: common.StopLimit,
		Price: dec("105"), HasPrice: true,
		TriggerPrice: dec("100"), HasTrigger: true,
		Quantity: dec("1"), Owner: "alice",
	}
	child := e.convertTrigger(trig)

	assert.Equal(t, common.Limit, child.OrderType)
	assert.True(t, child.HasPrice)
	assert.True(t, child.Price.Equal(dec("105")))
	assert.Equal(t, "alice", child.Owner)
}

func TestConvertTriggerStopLimitFallsBackToTriggerPrice(t *testing.T) {
	e := New(Config{}, nil, WithClock(fakeClock()))
	trig := &common.Order{
		Symbol: "BTC-USD", Side: common.Buy, OrderType: common.StopLimit,
		TriggerPrice: dec("100"), HasTrigger: true,
		Quantity: dec("1"),
	}
	child := e.convertTrigger(trig)

	assert.True(t, child.HasPrice)
	assert.True(t, child.Price.Equal(dec("100")))
}

func TestConvertTriggerStopMarketBecomesMarket(t *testing.T) {
	e := New(Config{}, nil, WithClock(fakeClock()))
	trig := &common.Order{Symbol: "BTC-USD", Side: common.Sell, OrderType: common.StopMarket, Quantity: dec("1")}
	child := e.convertTrigger(trig)

	assert.Equal(t, common.Market, child.OrderType)
	assert.False(t, child.HasPrice)
}
