package engine

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"skoll/internal/common"
)

// fires reports whether trigger order t should activate given the
// latest traded price, per spec.md §4.3.4.
func fires(t *common.Order, lastPrice decimal.Decimal) bool {
	switch t.OrderType {
	case common.StopMarket, common.StopLimit:
		if t.Side == common.Buy {
			return lastPrice.GreaterThanOrEqual(t.TriggerPrice)
		}
		return lastPrice.LessThanOrEqual(t.TriggerPrice)
	case common.TakeProfit:
		if t.Side == common.Sell {
			return lastPrice.GreaterThanOrEqual(t.TriggerPrice)
		}
		return lastPrice.LessThanOrEqual(t.TriggerPrice)
	default:
		return false
	}
}

// drainFiredTriggers scans the trigger store in insertion order,
// removing and returning every trigger whose condition is satisfied by
// lastPrice. Callers own the returned orders and must convert and
// resubmit them once the symbol's lock has been released.
func (st *symbolState) drainFiredTriggers(lastPrice decimal.Decimal) []*common.Order {
	if len(st.triggers) == 0 {
		return nil
	}
	var fired []*common.Order
	kept := st.triggers[:0:0]
	for _, t := range st.triggers {
		if fires(t, lastPrice) {
			fired = append(fired, t)
		} else {
			kept = append(kept, t)
		}
	}
	st.triggers = kept
	return fired
}

// convertTrigger builds the synthetic child order a fired trigger
// submits recursively, per spec.md §4.3.4: stop_market/take_profit
// become a market child; stop_limit becomes a limit child at the
// trigger's own price, falling back to its trigger_price when absent.
func (e *Engine) convertTrigger(t *common.Order) common.Order {
	child := common.Order{
		Symbol:  t.Symbol,
		Side:    t.Side,
		Quantity: t.Quantity,
		OrderID: uuid.NewString(),
		TsNano:  e.clock(),
		Owner:   t.Owner,
	}
	switch t.OrderType {
	case common.StopLimit:
		child.OrderType = common.Limit
		child.HasPrice = true
		if t.HasPrice {
			child.Price = t.Price
		} else {
			child.Price = t.TriggerPrice
		}
	default: // StopMarket, TakeProfit
		child.OrderType = common.Market
	}
	return child
}
