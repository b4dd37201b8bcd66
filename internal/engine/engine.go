// Package engine implements the per-symbol matching coordinator (C3):
// intake, price-time-priority matching, resting, cancellation, the
// trigger store, and snapshot/restore. Every per-symbol operation is
// serialized by that symbol's mutex; distinct symbols never contend.
package engine

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"skoll/internal/book"
	"skoll/internal/common"
)

// Config holds the fee schedule applied to every trade.
type Config struct {
	MakerFeeBps int64
	TakerFeeBps int64
}

// EventSink receives market-data and trade events. github.com/tidwall
// style: the engine only needs "can publish", not fan-out internals,
// so fanout.Broadcaster is consumed through this narrow interface.
type EventSink interface {
	Publish(topic string, message any)
}

// noopSink discards every event; used when no sink is wired, so the
// engine never has to nil-check on its hot path.
type noopSink struct{}

func (noopSink) Publish(string, any) {}

// symbolState bundles everything the engine owns for one symbol behind
// a single mutex: the book, the trigger store, and the last traded
// price used to evaluate trigger conditions.
type symbolState struct {
	mu           sync.Mutex
	book         *book.OrderBook
	triggers     []*common.Order
	lastPrice    decimal.Decimal
	hasLastPrice bool
}

// Engine is the top-level per-symbol coordinator. The symbols map is
// guarded by its own lock, separate from any individual symbol's
// matching lock, so looking up (or lazily creating) a symbol never
// blocks on another symbol's in-flight submission.
type Engine struct {
	cfg Config

	symbolsMu sync.RWMutex
	symbols   map[string]*symbolState

	sink          EventSink
	clock         func() int64
	onTriggerFire func(n int)
}

// Option configures optional Engine behavior.
type Option func(*Engine)

// WithClock overrides the nanosecond clock used to stamp orders and
// trades; tests use this for deterministic timestamps.
func WithClock(fn func() int64) Option {
	return func(e *Engine) { e.clock = fn }
}

// WithTriggerHook registers a callback invoked after a Submit that
// fired at least one stop/take-profit trigger, with the number of
// triggers drained and resubmitted as a result (it is not called when
// none fired) — wired to a metrics counter by cmd/server, never by the core
// itself, the same pattern fanout.WithDropHook uses.
func WithTriggerHook(fn func(n int)) Option {
	return func(e *Engine) { e.onTriggerFire = fn }
}

// New constructs an Engine with the given fee schedule, publishing
// market-data and trade events to sink. A nil sink is replaced with a
// no-op so Submit never needs to check for one.
func New(cfg Config, sink EventSink, opts ...Option) *Engine {
	if sink == nil {
		sink = noopSink{}
	}
	e := &Engine{
		cfg:     cfg,
		symbols: make(map[string]*symbolState),
		sink:    sink,
		clock:   defaultClock,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) state(symbol string) *symbolState {
	e.symbolsMu.RLock()
	st, ok := e.symbols[symbol]
	e.symbolsMu.RUnlock()
	if ok {
		return st
	}

	e.symbolsMu.Lock()
	defer e.symbolsMu.Unlock()
	if st, ok = e.symbols[symbol]; ok {
		return st
	}
	st = &symbolState{book: book.New(symbol)}
	e.symbols[symbol] = st
	return st
}

// Submit accepts a validated order and returns the trades it produced
// (in execution order) and its resting residual, if any. Trigger
// orders fired as a side effect of this submission are drained
// afterwards, each as an independent Submit call under its own lock
// acquisition — see SPEC_FULL.md §9 for why this requires no reentrant
// mutex. Their resulting trades/events are not folded into this call's
// return value; they surface only through the event fan-out, exactly
// as an exchange's own stop-triggered fill would not appear on the
// ack of the order that tripped it.
func (e *Engine) Submit(order common.Order) ([]common.Trade, *common.Order) {
	if order.OrderID == "" {
		order.OrderID = uuid.NewString()
	}
	if order.TsNano == 0 {
		order.TsNano = e.clock()
	}

	st := e.state(order.Symbol)

	st.mu.Lock()
	trades, resting, fired, mutated := e.matchLocked(st, order)
	if mutated {
		e.emitDepthLocked(st, order.Symbol)
	}
	st.mu.Unlock()

	if len(fired) > 0 && e.onTriggerFire != nil {
		e.onTriggerFire(len(fired))
	}
	for _, trigger := range fired {
		child := e.convertTrigger(trigger)
		e.Submit(child)
	}

	return trades, resting
}

// matchLocked runs the price-time-priority algorithm for order against
// st, which the caller already holds locked. It returns the trades
// produced, the resting residual if any, any triggers that fired as a
// result of this submission's trades (already removed from the store),
// and whether the book was mutated (used to decide whether a
// market-data event is due).
func (e *Engine) matchLocked(st *symbolState, order common.Order) (trades []common.Trade, resting *common.Order, fired []*common.Order, mutated bool) {
	if order.OrderType.IsTrigger() {
		st.triggers = append(st.triggers, &order)
		return nil, nil, nil, false
	}

	makerSide := st.book.Bids
	if order.Side == common.Buy {
		makerSide = st.book.Asks
	}

	if order.OrderType == common.FOK {
		avail := makerSide.SweepAvailable(order.Crossable)
		if avail.LessThan(order.Quantity) {
			return nil, nil, nil, false
		}
	}

	for order.Quantity.Sign() > 0 {
		price, ok := makerSide.BestPrice()
		if !ok || !order.Crossable(price) {
			break
		}
		head, ok := makerSide.PopBestOrder()
		if !ok {
			break
		}

		qty := decimal.Min(order.Quantity, head.Quantity)
		head.Quantity = head.Quantity.Sub(qty)
		order.Quantity = order.Quantity.Sub(qty)
		makerSide.ReduceHead(price, qty)

		trade := e.buildTrade(order, *head, qty, price)
		trades = append(trades, trade)
		mutated = true
		e.sink.Publish(TradeTopic(order.Symbol), tradeEvent(trade))

		st.lastPrice, st.hasLastPrice = price, true
		fired = append(fired, st.drainFiredTriggers(price)...)
	}

	remaining := order.Quantity
	switch {
	case remaining.Sign() == 0:
		// nothing rests
	case order.OrderType == common.Market || order.OrderType == common.IOC || order.OrderType == common.FOK:
		// remainder dropped
	default: // Limit, and limit children of stop_limit triggers
		clone := order.Clone(remaining)
		if clone.Side == common.Buy {
			st.book.Bids.Add(&clone)
		} else {
			st.book.Asks.Add(&clone)
		}
		resting = &clone
		mutated = true
	}

	return trades, resting, fired, mutated
}

func (e *Engine) buildTrade(taker common.Order, maker common.Order, qty decimal.Decimal, price decimal.Decimal) common.Trade {
	bps := decimal.NewFromInt(10000)
	makerFee := qty.Mul(price).Mul(decimal.NewFromInt(e.cfg.MakerFeeBps)).Div(bps)
	takerFee := qty.Mul(price).Mul(decimal.NewFromInt(e.cfg.TakerFeeBps)).Div(bps)

	return common.Trade{
		Symbol:        taker.Symbol,
		TradeID:       uuid.NewString(),
		Price:         price,
		Quantity:      qty,
		AggressorSide: taker.Side,
		MakerOrderID:  maker.OrderID,
		TakerOrderID:  taker.OrderID,
		MakerOwner:    maker.Owner,
		TakerOwner:    taker.Owner,
		MakerFee:      makerFee,
		TakerFee:      takerFee,
		TsNano:        e.clock(),
	}
}

// Cancel removes a live resting order from either half-book or from
// the trigger store. Removing a book order emits a fresh market-data
// event; removing a trigger does not, since the trigger was never
// reflected in the book.
func (e *Engine) Cancel(symbol, orderID string) bool {
	st := e.state(symbol)
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.book.Bids.RemoveOrder(orderID) || st.book.Asks.RemoveOrder(orderID) {
		e.emitDepthLocked(st, symbol)
		return true
	}
	for i, t := range st.triggers {
		if t.OrderID == orderID {
			st.triggers = append(st.triggers[:i:i], st.triggers[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot returns a top-10 depth projection of symbol. Non-mutating.
func (e *Engine) Snapshot(symbol string) book.Depth {
	st := e.state(symbol)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.book.Depth(10)
}

func (e *Engine) emitDepthLocked(st *symbolState, symbol string) {
	depth := st.book.Depth(10)
	evt := MarketDataEvent{
		Timestamp: isoMicros(e.clock()),
		Symbol:    symbol,
		Bids:      toLevelPairs(depth.Bids),
		Asks:      toLevelPairs(depth.Asks),
	}
	e.sink.Publish(MarketDataTopic(symbol), evt)
}

func toLevelPairs(levels []book.LevelQty) []LevelPair {
	out := make([]LevelPair, len(levels))
	for i, l := range levels {
		out[i] = LevelPair{Price: l.Price, Qty: l.Qty}
	}
	return out
}

func defaultClock() int64 { return nowNano() }
