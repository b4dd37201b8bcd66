// Package book implements one half-book (bid or ask) and the paired
// order book for a single symbol: FIFO price levels, a best-price
// index, and the aggregated depth/BBO projections read by snapshots
// and market-data events.
package book

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"

	"skoll/internal/common"
)

var (
	// ErrNoPrice is returned by Add when the order has no positive price.
	ErrNoPrice = errors.New("book: order has no positive price")
)

// PriceLevel is one price key of a half-book: a FIFO sequence of live
// orders plus the cached sum of their quantities. The sum is kept in
// sync by Add/ReduceHead/RemoveOrder rather than recomputed, so a BBO
// read never walks the FIFO.
type PriceLevel struct {
	Price      decimal.Decimal
	Orders     []*common.Order
	QtyAtPrice decimal.Decimal
}

// Side is one half of an order book: either all live bids or all live
// asks. The best-price index is a btree keyed by price, with the
// comparator flipped for bids so Min() always yields the correct
// extremum for either side (max for bids, min for asks) — the same
// trick the teacher's single-asset OrderBook used, generalized to a
// reusable type shared by both sides.
type Side struct {
	isBid  bool
	levels *btree.BTreeG[*PriceLevel]
}

// NewSide constructs an empty half-book for the given side.
func NewSide(isBid bool) *Side {
	var less func(a, b *PriceLevel) bool
	if isBid {
		less = func(a, b *PriceLevel) bool { return a.Price.GreaterThan(b.Price) }
	} else {
		less = func(a, b *PriceLevel) bool { return a.Price.LessThan(b.Price) }
	}
	return &Side{isBid: isBid, levels: btree.NewBTreeG(less)}
}

func probe(price decimal.Decimal) *PriceLevel {
	return &PriceLevel{Price: price}
}

// Add appends order to the FIFO of order.Price, creating the level if
// absent, and updates QtyAtPrice. The caller must ensure order.Quantity
// is positive; Add rejects orders with no positive price.
func (s *Side) Add(order *common.Order) error {
	if !order.HasPrice || order.Price.Sign() <= 0 {
		return ErrNoPrice
	}
	level, ok := s.levels.GetMut(probe(order.Price))
	if !ok {
		level = &PriceLevel{Price: order.Price, QtyAtPrice: decimal.Zero}
		s.levels.Set(level)
	}
	level.Orders = append(level.Orders, order)
	level.QtyAtPrice = level.QtyAtPrice.Add(order.Quantity)
	return nil
}

// BestPrice returns the best (max for bids, min for asks) occupied
// price, lazily discarding levels that have emptied out since they
// were last touched. Returns false when the side is empty.
func (s *Side) BestPrice() (decimal.Decimal, bool) {
	level, ok := s.bestLevel()
	if !ok {
		return decimal.Decimal{}, false
	}
	return level.Price, true
}

// bestLevel walks the top of the index, discarding stale (empty)
// levels, until it finds one with live quantity or the side runs dry.
func (s *Side) bestLevel() (*PriceLevel, bool) {
	for {
		level, ok := s.levels.MinMut()
		if !ok {
			return nil, false
		}
		if level.QtyAtPrice.Sign() > 0 && len(liveOrders(level)) > 0 {
			return level, true
		}
		s.levels.Delete(level)
	}
}

// liveOrders trims dead (zero-quantity) orders off the front of the
// level's FIFO, mutating level.Orders in place, and returns what
// remains. This is the lazy per-order cleanup that mirrors the lazy
// per-level cleanup in bestLevel.
func liveOrders(level *PriceLevel) []*common.Order {
	i := 0
	for i < len(level.Orders) && level.Orders[i].Quantity.Sign() <= 0 {
		i++
	}
	if i > 0 {
		level.Orders = level.Orders[i:]
	}
	return level.Orders
}

// PopBestOrder returns the head order at the best price without
// removing it from the FIFO — the caller mutates its Quantity and then
// calls ReduceHead to keep the aggregate in sync. Returns false when
// the side is empty.
func (s *Side) PopBestOrder() (*common.Order, bool) {
	level, ok := s.bestLevel()
	if !ok {
		return nil, false
	}
	orders := liveOrders(level)
	if len(orders) == 0 {
		return nil, false
	}
	return orders[0], true
}

// ReduceHead decrements QtyAtPrice[price] by qty, clamping at zero.
func (s *Side) ReduceHead(price decimal.Decimal, qty decimal.Decimal) {
	level, ok := s.levels.GetMut(probe(price))
	if !ok {
		return
	}
	level.QtyAtPrice = level.QtyAtPrice.Sub(qty)
	if level.QtyAtPrice.Sign() < 0 {
		level.QtyAtPrice = decimal.Zero
	}
}

// RemoveOrder scans levels for orderID, removes it from its FIFO and
// decrements QtyAtPrice, reporting whether it was found.
func (s *Side) RemoveOrder(orderID string) bool {
	var found bool
	var emptied []*PriceLevel
	s.levels.Scan(func(level *PriceLevel) bool {
		for i, o := range level.Orders {
			if o.OrderID != orderID {
				continue
			}
			level.QtyAtPrice = level.QtyAtPrice.Sub(o.Quantity)
			if level.QtyAtPrice.Sign() < 0 {
				level.QtyAtPrice = decimal.Zero
			}
			level.Orders = append(level.Orders[:i:i], level.Orders[i+1:]...)
			found = true
			if len(level.Orders) == 0 {
				emptied = append(emptied, level)
			}
			return false
		}
		return true
	})
	for _, level := range emptied {
		s.levels.Delete(level)
	}
	return found
}

// OrdersAt returns the live FIFO at price, for callers (the snapshot
// codec) that need the raw order list rather than the aggregate.
func (s *Side) OrdersAt(price decimal.Decimal) (bool, []*common.Order) {
	level, ok := s.levels.GetMut(probe(price))
	if !ok {
		return false, nil
	}
	return true, liveOrders(level)
}

// SweepAvailable sums QtyAtPrice over every level, from best outward,
// for which crossable(level.Price) holds, stopping at the first level
// that does not cross. Used by FOK admission to decide, without
// mutating anything, whether the full order quantity is fillable.
func (s *Side) SweepAvailable(crossable func(price decimal.Decimal) bool) decimal.Decimal {
	total := decimal.Zero
	s.levels.Scan(func(level *PriceLevel) bool {
		if level.QtyAtPrice.Sign() <= 0 {
			return true
		}
		if !crossable(level.Price) {
			return false
		}
		total = total.Add(level.QtyAtPrice)
		return true
	})
	return total
}

// LevelQty is one aggregated (price, quantity) pair, as returned by
// Aggregate and used for depth and BBO projections.
type LevelQty struct {
	Price decimal.Decimal
	Qty   decimal.Decimal
}

// Aggregate returns up to depth occupied levels in priority order
// (descending for bids, ascending for asks).
func (s *Side) Aggregate(depth int) []LevelQty {
	out := make([]LevelQty, 0, depth)
	s.levels.Scan(func(level *PriceLevel) bool {
		if level.QtyAtPrice.Sign() > 0 && len(level.Orders) > 0 {
			out = append(out, LevelQty{Price: level.Price, Qty: level.QtyAtPrice})
		}
		return len(out) < depth
	})
	return out
}

// Empty reports whether the side currently has no live quantity.
func (s *Side) Empty() bool {
	_, ok := s.bestLevel()
	return !ok
}
