package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"skoll/internal/transport"
)

// Minimal JSON-line CLI client, the replacement for the teacher's
// fixed-width binary client in cmd/client/client.go: it speaks the
// same submit/cancel/snapshot/subscribe envelopes the server accepts.
func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the matching server")
	owner := flag.String("owner", "", "owner label attached to orders")
	action := flag.String("action", "submit", "action: submit|cancel|snapshot|subscribe")

	symbol := flag.String("symbol", "BTC-USD", "symbol")
	side := flag.String("side", "buy", "buy or sell")
	orderType := flag.String("type", "limit", "market|limit|ioc|fok|stop_market|stop_limit|take_profit")
	price := flag.String("price", "", "limit/stop price")
	triggerPrice := flag.String("trigger", "", "trigger price for stop/take-profit orders")
	qty := flag.String("qty", "1", "quantity")

	orderID := flag.String("order_id", "", "order id to cancel")
	topic := flag.String("topic", "market_data", "subscribe topic: market_data|trades")

	flag.Parse()

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("connected to %s\n", *serverAddr)

	go readResponses(conn)

	switch strings.ToLower(*action) {
	case "submit":
		req := transport.SubmitRequest{
			Symbol:    *symbol,
			OrderType: *orderType,
			Side:      *side,
			Quantity:  *qty,
			Owner:     *owner,
		}
		if *price != "" {
			req.Price = price
		}
		if *triggerPrice != "" {
			req.TriggerPrice = triggerPrice
		}
		send(conn, transport.TypeSubmit, req)

	case "cancel":
		if *orderID == "" {
			log.Fatal("-order_id is required for cancel")
		}
		send(conn, transport.TypeCancel, transport.CancelRequest{Symbol: *symbol, OrderID: *orderID})

	case "snapshot":
		send(conn, transport.TypeSnapshot, transport.SnapshotRequest{Symbol: *symbol})

	case "subscribe":
		send(conn, transport.TypeSubscribe, transport.SubscribeRequest{Symbol: *symbol, Topic: *topic})

	default:
		log.Fatalf("unknown action %q", *action)
	}

	fmt.Println("listening for responses... (ctrl-c to exit)")
	select {}
}

func send(conn net.Conn, typ string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("encode %s payload: %v", typ, err)
	}
	env := transport.Envelope{Type: typ, Payload: body}
	line, err := json.Marshal(env)
	if err != nil {
		log.Fatalf("encode envelope: %v", err)
	}
	if _, err := conn.Write(append(line, '\n')); err != nil {
		log.Fatalf("write: %v", err)
	}
}

func readResponses(conn net.Conn) {
	reader := bufio.NewReaderSize(conn, 64*1024)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			fmt.Println("connection closed")
			os.Exit(0)
		}
		var env transport.Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			fmt.Printf("malformed response: %v\n", err)
			continue
		}
		fmt.Printf("[%s] %s\n", env.Type, string(env.Payload))
	}
}
