package book

import "github.com/shopspring/decimal"

// OrderBook is the pair of half-books for one symbol. It is a pure
// projection type: all matching mutation happens against Bids/Asks
// directly from the engine, which alone holds the per-symbol lock.
type OrderBook struct {
	Symbol string
	Bids   *Side
	Asks   *Side
}

// New constructs an empty order book for symbol.
func New(symbol string) *OrderBook {
	return &OrderBook{Symbol: symbol, Bids: NewSide(true), Asks: NewSide(false)}
}

// BBO is the best bid/offer with aggregate quantities at each.
type BBO struct {
	Symbol      string
	BestBid     decimal.Decimal
	HasBid      bool
	BestBidQty  decimal.Decimal
	BestAsk     decimal.Decimal
	HasAsk      bool
	BestAskQty  decimal.Decimal
}

// BestBid returns the highest live bid price, if any.
func (b *OrderBook) BestBid() (decimal.Decimal, bool) { return b.Bids.BestPrice() }

// BestAsk returns the lowest live ask price, if any.
func (b *OrderBook) BestAsk() (decimal.Decimal, bool) { return b.Asks.BestPrice() }

// Bbo returns the current best bid/offer with their aggregate
// quantities.
func (b *OrderBook) Bbo() BBO {
	out := BBO{Symbol: b.Symbol}
	if p, ok := b.BestBid(); ok {
		lvl, _ := b.Bids.levels.Get(probe(p))
		out.BestBid, out.HasBid, out.BestBidQty = p, true, lvl.QtyAtPrice
	}
	if p, ok := b.BestAsk(); ok {
		lvl, _ := b.Asks.levels.Get(probe(p))
		out.BestAsk, out.HasAsk, out.BestAskQty = p, true, lvl.QtyAtPrice
	}
	return out
}

// Depth is the top-d aggregated levels per side, as served by market
// data events and the snapshot view.
type Depth struct {
	Symbol string
	Bids   []LevelQty
	Asks   []LevelQty
}

// Depth returns the top-d aggregated levels on both sides, in
// priority order (bids descending, asks ascending).
func (b *OrderBook) Depth(d int) Depth {
	return Depth{Symbol: b.Symbol, Bids: b.Bids.Aggregate(d), Asks: b.Asks.Aggregate(d)}
}

// NonCrossing reports whether the book satisfies the non-crossing
// invariant: the best bid is strictly below the best ask, or one side
// is empty.
func (b *OrderBook) NonCrossing() bool {
	bid, hasBid := b.BestBid()
	ask, hasAsk := b.BestAsk()
	if !hasBid || !hasAsk {
		return true
	}
	return bid.LessThan(ask)
}
