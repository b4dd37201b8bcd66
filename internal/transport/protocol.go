// Package transport is the thin, replaceable request adapter and TCP
// listener described in spec.md §1 and §6: it owns validation and wire
// framing, and nothing else — every matching decision happens in
// internal/engine. One JSON value per line, in either direction.
package transport

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"skoll/internal/common"
)

// Envelope is the outer wire frame: a discriminator and a
// type-specific payload, one per line.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Request types, identified by Envelope.Type.
const (
	TypeSubmit    = "submit"
	TypeCancel    = "cancel"
	TypeSnapshot  = "snapshot"
	TypeSubscribe = "subscribe"
)

// Response/event types, identified by Envelope.Type.
const (
	TypeAck        = "ack"
	TypeCancelAck  = "cancel_ack"
	TypeSnapshotOK = "snapshot_ok"
	TypeError      = "error"
	TypeTrade      = "trade"
	TypeMarketData = "market_data"
)

// SubmitRequest is the submission interface payload from spec.md §6:
// everything the adapter validates before it ever reaches the engine.
type SubmitRequest struct {
	Symbol       string  `json:"symbol"`
	OrderType    string  `json:"order_type"`
	Side         string  `json:"side"`
	Quantity     string  `json:"quantity"`
	Price        *string `json:"price,omitempty"`
	TriggerPrice *string `json:"trigger_price,omitempty"`
	Owner        string  `json:"owner,omitempty"`
}

// CancelRequest identifies an order to remove.
type CancelRequest struct {
	Symbol  string `json:"symbol"`
	OrderID string `json:"order_id"`
}

// SnapshotRequest asks for a symbol's current depth view.
type SnapshotRequest struct {
	Symbol string `json:"symbol"`
}

// SubscribeRequest opens a live stream of either market-data or trade
// events for a symbol on this connection.
type SubscribeRequest struct {
	Symbol string `json:"symbol"`
	Topic  string `json:"topic"` // "market_data" | "trades"
}

// ValidationError is a 4xx-equivalent: the request never reaches the
// engine.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

var orderTypes = map[string]common.OrderType{
	"market":      common.Market,
	"limit":       common.Limit,
	"ioc":         common.IOC,
	"fok":         common.FOK,
	"stop_market": common.StopMarket,
	"stop_limit":  common.StopLimit,
	"take_profit": common.TakeProfit,
}

func needsPrice(t common.OrderType) bool {
	return t == common.Limit || t == common.IOC || t == common.FOK || t == common.StopLimit
}

func needsTrigger(t common.OrderType) bool {
	return t == common.StopMarket || t == common.StopLimit || t == common.TakeProfit
}

// ToOrder validates r and builds the common.Order the engine will
// accept. Validation failures are ValidationError, per spec.md §7.
func (r SubmitRequest) ToOrder() (common.Order, error) {
	if r.Symbol == "" {
		return common.Order{}, invalid("missing symbol")
	}
	orderType, ok := orderTypes[r.OrderType]
	if !ok {
		return common.Order{}, invalid("unknown order_type %q", r.OrderType)
	}
	var side common.Side
	switch r.Side {
	case "buy":
		side = common.Buy
	case "sell":
		side = common.Sell
	default:
		return common.Order{}, invalid("unknown side %q", r.Side)
	}

	qty, err := decimal.NewFromString(r.Quantity)
	if err != nil || qty.Sign() <= 0 {
		return common.Order{}, invalid("invalid quantity %q", r.Quantity)
	}

	order := common.Order{
		Symbol:    r.Symbol,
		Side:      side,
		OrderType: orderType,
		Quantity:  qty,
		Owner:     r.Owner,
	}

	if needsPrice(orderType) {
		if r.Price == nil {
			return common.Order{}, invalid("price required for order_type %q", r.OrderType)
		}
		px, err := decimal.NewFromString(*r.Price)
		if err != nil || px.Sign() <= 0 {
			return common.Order{}, invalid("invalid price %q", *r.Price)
		}
		order.Price, order.HasPrice = px, true
	} else if r.Price != nil {
		px, err := decimal.NewFromString(*r.Price)
		if err == nil && px.Sign() > 0 {
			order.Price, order.HasPrice = px, true
		}
	}

	if needsTrigger(orderType) {
		if r.TriggerPrice == nil {
			return common.Order{}, invalid("trigger_price required for order_type %q", r.OrderType)
		}
		tp, err := decimal.NewFromString(*r.TriggerPrice)
		if err != nil || tp.Sign() <= 0 {
			return common.Order{}, invalid("invalid trigger_price %q", *r.TriggerPrice)
		}
		order.TriggerPrice, order.HasTrigger = tp, true
	}

	return order, nil
}

// AckResponse is the submission interface output from spec.md §6.
type AckResponse struct {
	OrderID        string      `json:"order_id"`
	Resting        bool        `json:"resting"`
	RestingOrderID string      `json:"resting_order_id,omitempty"`
	RestingQty     string      `json:"resting_qty,omitempty"`
	Trades         []TradeDoc  `json:"trades"`
}

// TradeDoc is one trade record in an AckResponse.
type TradeDoc struct {
	TradeID       string `json:"trade_id"`
	Price         string `json:"price"`
	Quantity      string `json:"quantity"`
	AggressorSide string `json:"aggressor_side"`
	MakerOrderID  string `json:"maker_order_id"`
	TakerOrderID  string `json:"taker_order_id"`
	MakerOwner    string `json:"maker_owner,omitempty"`
	TakerOwner    string `json:"taker_owner,omitempty"`
	MakerFee      string `json:"maker_fee"`
	TakerFee      string `json:"taker_fee"`
}

func tradeDoc(t common.Trade) TradeDoc {
	return TradeDoc{
		TradeID:       t.TradeID,
		Price:         t.Price.String(),
		Quantity:      t.Quantity.String(),
		AggressorSide: t.AggressorSide.String(),
		MakerOrderID:  t.MakerOrderID,
		TakerOrderID:  t.TakerOrderID,
		MakerOwner:    t.MakerOwner,
		TakerOwner:    t.TakerOwner,
		MakerFee:      t.MakerFee.String(),
		TakerFee:      t.TakerFee.String(),
	}
}

func buildAck(orderID string, resting *common.Order, trades []common.Trade) AckResponse {
	ack := AckResponse{OrderID: orderID, Trades: make([]TradeDoc, len(trades))}
	for i, t := range trades {
		ack.Trades[i] = tradeDoc(t)
	}
	if resting != nil {
		ack.Resting = true
		ack.RestingOrderID = resting.OrderID
		ack.RestingQty = resting.Quantity.String()
	}
	return ack
}

// ErrorResponse carries a validation or malformed-request message back
// to the submitter. A cancel for an unknown order is not an error; it
// is reported as CancelAckResponse{Found: false}.
type ErrorResponse struct {
	Message string `json:"message"`
}

// CancelAckResponse carries the boolean result of a cancel request.
type CancelAckResponse struct {
	Found bool `json:"found"`
}

// DepthDoc mirrors the market-data/snapshot depth shape of spec.md §6.
type DepthDoc struct {
	Timestamp string     `json:"timestamp"`
	Symbol    string     `json:"symbol"`
	Bids      [][2]string `json:"bids"`
	Asks      [][2]string `json:"asks"`
}
