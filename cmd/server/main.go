package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"skoll/internal/config"
	"skoll/internal/engine"
	"skoll/internal/fanout"
	"skoll/internal/metrics"
	"skoll/internal/transport"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (optional)")
	symbols := flag.String("symbols", "", "comma-separated symbols to load snapshots for at startup")
	flag.Parse()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	m := metrics.New()
	bus := fanout.New(fanout.DefaultCapacity, fanout.WithDropHook(func(topic string) {
		m.FanoutDrops.WithLabelValues(topic).Inc()
	}))

	eng := engine.New(engine.Config{
		MakerFeeBps: cfg.MakerFeeBps,
		TakerFeeBps: cfg.TakerFeeBps,
	}, bus, engine.WithTriggerHook(func(n int) {
		m.TriggersFired.Add(float64(n))
	}))

	for _, symbol := range splitNonEmpty(*symbols) {
		if eng.LoadState(symbol, cfg.StateDir) {
			log.Info().Str("symbol", symbol).Msg("loaded snapshot")
		}
	}

	srv := transport.New(cfg.ListenAddress, cfg.ListenPort, eng, bus, m)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		log.Info().Str("address", cfg.MetricsAddress).Msg("metrics listening")
		if err := http.ListenAndServe(cfg.MetricsAddress, mux); err != nil {
			log.Error().Err(err).Msg("metrics server exited")
		}
	}()

	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Error().Err(err).Msg("transport server exited")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down, saving snapshots")

	shutdownDeadline := time.Now().Add(5 * time.Second)
	for _, symbol := range splitNonEmpty(*symbols) {
		if time.Now().After(shutdownDeadline) {
			break
		}
		if err := eng.SaveState(symbol, cfg.StateDir); err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("save snapshot")
		}
	}
}

func splitNonEmpty(csv string) []string {
	if csv == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(csv); i++ {
		if i == len(csv) || csv[i] == ',' {
			if i > start {
				out = append(out, csv[start:i])
			}
			start = i + 1
		}
	}
	return out
}
