// Package snapshot implements the durable-blob codec for a symbol's
// book and pending triggers (C5): JSON, one file per symbol, decimals
// as canonical strings. Snapshots are advisory — a missing or
// malformed file is never a hard error, only a false "no-op" result.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"skoll/internal/book"
	"skoll/internal/common"
)

// OrderDoc is the on-disk shape of a single order, decimals as
// canonical strings and optional fields nullable.
type OrderDoc struct {
	Symbol       string  `json:"symbol"`
	OrderType    string  `json:"order_type"`
	Side         string  `json:"side"`
	Quantity     string  `json:"quantity"`
	Price        *string `json:"price"`
	TriggerPrice *string `json:"trigger_price"`
	OrderID      string  `json:"order_id"`
	TsNano       int64   `json:"ts_ns"`
	Owner        string  `json:"owner,omitempty"`
}

// LevelDoc is one price with its FIFO sequence of orders.
type LevelDoc struct {
	Price  string     `json:"price"`
	Orders []OrderDoc `json:"orders"`
}

// Doc is the full logical shape of a symbol's snapshot file.
type Doc struct {
	Symbol   string     `json:"symbol"`
	Bids     []LevelDoc `json:"bids"`
	Asks     []LevelDoc `json:"asks"`
	Triggers []OrderDoc `json:"triggers"`
}

var orderTypeNames = map[common.OrderType]string{
	common.Market:     "market",
	common.Limit:      "limit",
	common.IOC:        "ioc",
	common.FOK:        "fok",
	common.StopMarket: "stop_market",
	common.StopLimit:  "stop_limit",
	common.TakeProfit: "take_profit",
}

var orderTypesByName = func() map[string]common.OrderType {
	m := make(map[string]common.OrderType, len(orderTypeNames))
	for t, name := range orderTypeNames {
		m[name] = t
	}
	return m
}()

func sideName(s common.Side) string {
	if s == common.Sell {
		return "sell"
	}
	return "buy"
}

func sideByName(name string) common.Side {
	if name == "sell" {
		return common.Sell
	}
	return common.Buy
}

func encodeOrder(o *common.Order) OrderDoc {
	doc := OrderDoc{
		Symbol:    o.Symbol,
		OrderType: orderTypeNames[o.OrderType],
		Side:      sideName(o.Side),
		Quantity:  o.Quantity.String(),
		OrderID:   o.OrderID,
		TsNano:    o.TsNano,
		Owner:     o.Owner,
	}
	if o.HasPrice {
		s := o.Price.String()
		doc.Price = &s
	}
	if o.HasTrigger {
		s := o.TriggerPrice.String()
		doc.TriggerPrice = &s
	}
	return doc
}

func decodeOrder(doc OrderDoc) (common.Order, error) {
	qty, err := decimal.NewFromString(doc.Quantity)
	if err != nil {
		return common.Order{}, fmt.Errorf("snapshot: bad quantity %q: %w", doc.Quantity, err)
	}
	orderType, ok := orderTypesByName[doc.OrderType]
	if !ok {
		return common.Order{}, fmt.Errorf("snapshot: unknown order_type %q", doc.OrderType)
	}
	o := common.Order{
		Symbol:    doc.Symbol,
		OrderType: orderType,
		Side:      sideByName(doc.Side),
		Quantity:  qty,
		OrderID:   doc.OrderID,
		TsNano:    doc.TsNano,
		Owner:     doc.Owner,
	}
	if doc.Price != nil {
		p, err := decimal.NewFromString(*doc.Price)
		if err != nil {
			return common.Order{}, fmt.Errorf("snapshot: bad price %q: %w", *doc.Price, err)
		}
		o.Price, o.HasPrice = p, true
	}
	if doc.TriggerPrice != nil {
		p, err := decimal.NewFromString(*doc.TriggerPrice)
		if err != nil {
			return common.Order{}, fmt.Errorf("snapshot: bad trigger_price %q: %w", *doc.TriggerPrice, err)
		}
		o.TriggerPrice, o.HasTrigger = p, true
	}
	return o, nil
}

func encodeSide(s *book.Side, depth int) []LevelDoc {
	levels := s.Aggregate(depth)
	out := make([]LevelDoc, 0, len(levels))
	for _, lvl := range levels {
		_, orders := s.OrdersAt(lvl.Price)
		docs := make([]OrderDoc, len(orders))
		for i, o := range orders {
			docs[i] = encodeOrder(o)
		}
		out = append(out, LevelDoc{Price: lvl.Price.String(), Orders: docs})
	}
	return out
}

// Encode captures ob's current book and the given triggers as a
// durable Doc. Non-mutating; the caller must hold ob's symbol lock for
// the duration of the call to get a consistent view.
func Encode(ob *book.OrderBook, triggers []*common.Order) Doc {
	doc := Doc{
		Symbol:   ob.Symbol,
		Bids:     encodeSide(ob.Bids, maxLevels),
		Asks:     encodeSide(ob.Asks, maxLevels),
		Triggers: make([]OrderDoc, len(triggers)),
	}
	for i, t := range triggers {
		doc.Triggers[i] = encodeOrder(t)
	}
	return doc
}

// maxLevels bounds the number of price levels a snapshot captures.
// Large enough to be a no-op in practice; keeps pathological books from
// producing unbounded snapshot files.
const maxLevels = 1 << 20

// Decode rebuilds an OrderBook and trigger slice from doc. The
// best-price index is rebuilt from scratch by replaying Add for every
// order, since the index itself is never persisted (see SPEC_FULL.md
// §9's third open question).
func Decode(doc Doc) (*book.OrderBook, []*common.Order, error) {
	ob := book.New(doc.Symbol)
	for _, lvl := range doc.Bids {
		for _, od := range lvl.Orders {
			o, err := decodeOrder(od)
			if err != nil {
				return nil, nil, err
			}
			if err := ob.Bids.Add(&o); err != nil {
				return nil, nil, err
			}
		}
	}
	for _, lvl := range doc.Asks {
		for _, od := range lvl.Orders {
			o, err := decodeOrder(od)
			if err != nil {
				return nil, nil, err
			}
			if err := ob.Asks.Add(&o); err != nil {
				return nil, nil, err
			}
		}
	}
	triggers := make([]*common.Order, len(doc.Triggers))
	for i, od := range doc.Triggers {
		o, err := decodeOrder(od)
		if err != nil {
			return nil, nil, err
		}
		triggers[i] = &o
	}
	return ob, triggers, nil
}

// Path returns the conventional snapshot file path for symbol under
// dir: one file per symbol.
func Path(dir, symbol string) string {
	return filepath.Join(dir, symbol+".json")
}

// Save serializes doc to its conventional path under dir, creating dir
// if necessary.
func Save(dir string, doc Doc) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: create state dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	tmp := Path(dir, doc.Symbol) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("snapshot: write: %w", err)
	}
	return os.Rename(tmp, Path(dir, doc.Symbol))
}

// Load reads and parses the snapshot file for symbol under dir.
// Returns ok=false (never an error the caller must act on) when the
// file is absent or malformed — load is always advisory, per
// spec.md §7's corruption-handling rule.
func Load(dir, symbol string) (doc Doc, ok bool) {
	data, err := os.ReadFile(Path(dir, symbol))
	if err != nil {
		return Doc{}, false
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Doc{}, false
	}
	return doc, true
}
