package common

import "github.com/shopspring/decimal"

// Order is the unit the engine operates on, from intake through
// resting, partial fills and removal. Quantity decreases monotonically
// as fills occur; the order is dropped from its level once it reaches
// zero.
type Order struct {
	Symbol       string
	Side         Side
	OrderType    OrderType
	Quantity     decimal.Decimal
	Price        decimal.Decimal // zero value means "absent"
	HasPrice     bool
	TriggerPrice decimal.Decimal
	HasTrigger   bool
	OrderID      string
	TsNano       int64
	Owner        string // advisory label carried through to trade events; unused by matching
}

// Crossable reports whether this order (acting as taker) can match a
// resting order quoted at p. Market orders cross any price; limit-type
// orders (and limit children of triggers) cross only on their own side
// of p. An order with no price can never cross.
func (o Order) Crossable(p decimal.Decimal) bool {
	if o.OrderType == Market {
		return true
	}
	if !o.HasPrice {
		return false
	}
	if o.Side == Buy {
		return o.Price.GreaterThanOrEqual(p)
	}
	return o.Price.LessThanOrEqual(p)
}

// Clone returns a shallow copy of the order with quantity replaced.
// OrderID and TsNano are preserved so a resting residual keeps the
// time priority established at original submission.
func (o Order) Clone(remaining decimal.Decimal) Order {
	clone := o
	clone.Quantity = remaining
	return clone
}
