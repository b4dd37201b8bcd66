package engine

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"skoll/internal/common"
)

// isoMicros formats a nanosecond timestamp as ISO-8601 UTC with
// microsecond precision and a trailing Z, as required for market-data
// and trade events.
func isoMicros(tsNano int64) string {
	return time.Unix(0, tsNano).UTC().Format("2006-01-02T15:04:05.000000Z")
}

// LevelPair is one (price, quantity) entry of a market-data event's
// depth arrays. It marshals as a two-element JSON array rather than an
// object, matching the wire shape spec.md §6 requires.
type LevelPair struct {
	Price decimal.Decimal
	Qty   decimal.Decimal
}

func (lp LevelPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]decimal.Decimal{lp.Price, lp.Qty})
}

// MarketDataEvent is the per-symbol depth snapshot emitted after every
// book-mutating submission (and after a snapshot load).
type MarketDataEvent struct {
	Timestamp string      `json:"timestamp"`
	Symbol    string      `json:"symbol"`
	Bids      []LevelPair `json:"bids"`
	Asks      []LevelPair `json:"asks"`
}

// TradeEvent is the per-trade wire record, one per executed Trade.
type TradeEvent struct {
	Timestamp     string          `json:"timestamp"`
	Symbol        string          `json:"symbol"`
	TradeID       string          `json:"trade_id"`
	Price         decimal.Decimal `json:"price"`
	Quantity      decimal.Decimal `json:"quantity"`
	AggressorSide string          `json:"aggressor_side"`
	MakerOrderID  string          `json:"maker_order_id"`
	TakerOrderID  string          `json:"taker_order_id"`
	MakerOwner    string          `json:"maker_owner,omitempty"`
	TakerOwner    string          `json:"taker_owner,omitempty"`
	MakerFee      decimal.Decimal `json:"maker_fee"`
	TakerFee      decimal.Decimal `json:"taker_fee"`
}

func tradeEvent(t common.Trade) TradeEvent {
	return TradeEvent{
		Timestamp:     isoMicros(t.TsNano),
		Symbol:        t.Symbol,
		TradeID:       t.TradeID,
		Price:         t.Price,
		Quantity:      t.Quantity,
		AggressorSide: t.AggressorSide.String(),
		MakerOrderID:  t.MakerOrderID,
		TakerOrderID:  t.TakerOrderID,
		MakerOwner:    t.MakerOwner,
		TakerOwner:    t.TakerOwner,
		MakerFee:      t.MakerFee,
		TakerFee:      t.TakerFee,
	}
}

const mdTopicPrefix = "md:"
const tradeTopicPrefix = "trades:"

// MarketDataTopic returns the fan-out topic carrying depth events for
// symbol.
func MarketDataTopic(symbol string) string { return mdTopicPrefix + symbol }

// TradeTopic returns the fan-out topic carrying trade events for
// symbol.
func TradeTopic(symbol string) string { return tradeTopicPrefix + symbol }
