package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"skoll/internal/book"
	"skoll/internal/common"
	"skoll/internal/engine"
	"skoll/internal/fanout"
	"skoll/internal/metrics"
)

const defaultWorkers = 64

// Engine is the narrow slice of internal/engine.Engine the transport
// adapter needs, mirroring the teacher's own Engine interface in
// internal/net/server.go so this package can be tested against a fake.
type Engine interface {
	Submit(order common.Order) ([]common.Trade, *common.Order)
	Cancel(symbol, orderID string) bool
	Snapshot(symbol string) book.Depth
}

// Server is the TCP listener for the JSON-line submission/cancel/
// snapshot/subscribe protocol described in SPEC_FULL.md §4.9.
type Server struct {
	address string
	port    int

	engine  Engine
	bus     *fanout.Broadcaster
	metrics *metrics.Metrics

	pool   WorkerPool
	cancel context.CancelFunc
}

// New constructs a Server. bus and m may be nil.
func New(address string, port int, eng Engine, bus *fanout.Broadcaster, m *metrics.Metrics) *Server {
	return &Server{
		address: address,
		port:    port,
		engine:  eng,
		bus:     bus,
		metrics: m,
		pool:    NewWorkerPool(defaultWorkers),
	}
}

// Run listens until ctx is cancelled, serving connections through the
// worker pool. It blocks until shutdown completes.
func (s *Server) Run(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	defer s.cancel()

	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		return fmt.Errorf("transport: listen: %w", err)
	}
	defer listener.Close()

	s.pool.Setup(t, s.handleConn)

	log.Info().Str("address", listener.Addr().String()).Msg("transport listening")

	t.Go(func() error {
		<-ctx.Done()
		return listener.Close()
	})

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return t.Wait()
			default:
				log.Error().Err(err).Msg("accept failed")
				continue
			}
		}
		s.pool.AddTask(conn)
	}
}

// Shutdown cancels the server's context, stopping Run.
func (s *Server) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
}

// liveSub tracks one open subscribe stream so a connection can
// tear it down cleanly on close.
type liveSub struct {
	topic  string
	queue  fanout.Queue
	cancel *sync.Once
	stop   chan struct{}
}

func (s *Server) handleConn(t *tomb.Tomb, conn net.Conn) error {
	defer conn.Close()

	var writeMu sync.Mutex
	write := func(typ string, payload any) {
		body, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Msg("encode response payload")
			return
		}
		line, err := json.Marshal(Envelope{Type: typ, Payload: body})
		if err != nil {
			log.Error().Err(err).Msg("encode envelope")
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.Write(append(line, '\n'))
	}

	var subsMu sync.Mutex
	subs := make(map[string]*liveSub)
	defer func() {
		subsMu.Lock()
		defer subsMu.Unlock()
		for _, sub := range subs {
			close(sub.stop)
		}
	}()

	reader := bufio.NewReaderSize(conn, 64*1024)
	for {
		select {
		case <-t.Dying():
			return nil
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err != nil {
			return nil
		}
		if len(bytesTrim(line)) == 0 {
			continue
		}

		var env Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			write(TypeError, ErrorResponse{Message: "malformed request"})
			continue
		}

		switch env.Type {
		case TypeSubmit:
			s.handleSubmit(env.Payload, write)
		case TypeCancel:
			s.handleCancel(env.Payload, write)
		case TypeSnapshot:
			s.handleSnapshot(env.Payload, write)
		case TypeSubscribe:
			s.handleSubscribe(env.Payload, write, &subsMu, subs)
		default:
			write(TypeError, ErrorResponse{Message: "unknown request type"})
		}
	}
}

func bytesTrim(b []byte) []byte {
	i, j := 0, len(b)
	for i < j && (b[i] == ' ' || b[i] == '\n' || b[i] == '\r' || b[i] == '\t') {
		i++
	}
	for j > i && (b[j-1] == ' ' || b[j-1] == '\n' || b[j-1] == '\r' || b[j-1] == '\t') {
		j--
	}
	return b[i:j]
}

func (s *Server) handleSubmit(payload json.RawMessage, write func(string, any)) {
	var req SubmitRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		write(TypeError, ErrorResponse{Message: "malformed submit request"})
		return
	}
	order, err := req.ToOrder()
	if err != nil {
		write(TypeError, ErrorResponse{Message: err.Error()})
		return
	}

	start := time.Now()
	trades, resting := s.engine.Submit(order)
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.Submissions.WithLabelValues(req.OrderType).Inc()
		if len(trades) > 0 {
			for range trades {
				s.metrics.Trades.Inc()
			}
		}
		s.metrics.SubmitLatency.Observe(elapsed.Seconds())
	}

	write(TypeAck, buildAck(order.OrderID, resting, trades))
}

func (s *Server) handleCancel(payload json.RawMessage, write func(string, any)) {
	var req CancelRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		write(TypeError, ErrorResponse{Message: "malformed cancel request"})
		return
	}
	found := s.engine.Cancel(req.Symbol, req.OrderID)
	write(TypeCancelAck, CancelAckResponse{Found: found})
}

func (s *Server) handleSnapshot(payload json.RawMessage, write func(string, any)) {
	var req SnapshotRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		write(TypeError, ErrorResponse{Message: "malformed snapshot request"})
		return
	}
	depth := s.engine.Snapshot(req.Symbol)
	write(TypeSnapshotOK, depthDoc(req.Symbol, depth))
}

func depthDoc(symbol string, d book.Depth) DepthDoc {
	doc := DepthDoc{
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000000Z"),
		Symbol:    symbol,
		Bids:      make([][2]string, len(d.Bids)),
		Asks:      make([][2]string, len(d.Asks)),
	}
	for i, l := range d.Bids {
		doc.Bids[i] = [2]string{l.Price.String(), l.Qty.String()}
	}
	for i, l := range d.Asks {
		doc.Asks[i] = [2]string{l.Price.String(), l.Qty.String()}
	}
	return doc
}

func (s *Server) handleSubscribe(payload json.RawMessage, write func(string, any), subsMu *sync.Mutex, subs map[string]*liveSub) {
	var req SubscribeRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		write(TypeError, ErrorResponse{Message: "malformed subscribe request"})
		return
	}
	if s.bus == nil {
		write(TypeError, ErrorResponse{Message: "event fan-out unavailable"})
		return
	}

	var topic, eventType string
	switch req.Topic {
	case "market_data":
		topic, eventType = engine.MarketDataTopic(req.Symbol), TypeMarketData
	case "trades":
		topic, eventType = engine.TradeTopic(req.Symbol), TypeTrade
	default:
		write(TypeError, ErrorResponse{Message: "unknown subscribe topic"})
		return
	}

	subsMu.Lock()
	if _, already := subs[topic]; already {
		subsMu.Unlock()
		return
	}
	queue, handle := s.bus.Subscribe(topic)
	stop := make(chan struct{})
	subs[topic] = &liveSub{topic: topic, queue: queue, stop: stop}
	subsMu.Unlock()

	go func() {
		defer s.bus.Unsubscribe(topic, handle)
		for {
			select {
			case <-stop:
				return
			case msg, ok := <-queue:
				if !ok {
					return
				}
				write(eventType, msg)
			}
		}
	}()
}
