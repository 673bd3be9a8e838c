package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webseek/internal/events"
	"webseek/internal/indexer"
	"webseek/internal/store"
	"webseek/pkg/config"
	"webseek/pkg/kafka"
	"webseek/pkg/logger"
	"webseek/pkg/metrics"
	"webseek/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting index builder", "min_term_length", cfg.Indexer.MinTermLength)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(shutdownCtx)
		}()
	}

	pgClient, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	st, err := store.NewPostgres(ctx, pgClient)
	if err != nil {
		slog.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.CrawlEvents)
	defer producer.Close()
	collector := events.NewCollector(producer, 10000)
	collector.Start(ctx)
	defer collector.Close()

	b := indexer.New(st, cfg.Indexer, collector, m)
	b.Reporter = func(s indexer.Stats) {
		progress := 0.0
		if s.PagesTotal > 0 {
			progress = float64(s.PagesIndexed) / float64(s.PagesTotal) * 100
		}
		slog.Info("indexing progress",
			"session_id", s.SessionID,
			"pages_total", s.PagesTotal,
			"pages_indexed", s.PagesIndexed,
			"terms_indexed", s.TermsIndexed,
			"percent_complete", fmt.Sprintf("%.2f", progress),
		)
	}

	// A cancelled context is a requested stop; fall through so the deferred
	// closes flush buffered events.
	if err := b.Run(ctx); err != nil {
		slog.Warn("index builder interrupted", "reason", err)
		return
	}

	slog.Info("index builder finished")
}
