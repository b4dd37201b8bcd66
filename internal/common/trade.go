package common

import "github.com/shopspring/decimal"

// Trade is an immutable record of a single match between a resting
// maker order and an incoming taker order.
type Trade struct {
	Symbol        string
	TradeID       string
	Price         decimal.Decimal
	Quantity      decimal.Decimal
	AggressorSide Side
	MakerOrderID  string
	TakerOrderID  string
	MakerOwner    string
	TakerOwner    string
	MakerFee      decimal.Decimal
	TakerFee      decimal.Decimal
	TsNano        int64
}
