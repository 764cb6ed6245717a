package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"link-analytics/internal/config"
	ikafka "link-analytics/internal/kafka"
	"link-analytics/internal/model"
	"link-analytics/internal/pipeline"
	"link-analytics/internal/store"
	"link-analytics/pkg/batcher"
)

var (
	clicksConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loader_clicks_consumed_total",
		Help: "Total raw clicks consumed from clicks.raw",
	})
	enrichErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loader_enrich_errors_total",
		Help: "Number of enrichment failures",
	})
	batchSizeHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "loader_batch_size",
		Help:    "Histogram of ClickHouse batch sizes",
		Buckets: []float64{1, 10, 50, 100, 250, 500, 1000, 2000},
	})
	insertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "loader_insert_duration_seconds",
		Help:    "Duration of ClickHouse insert operations",
		Buckets: prometheus.DefBuckets,
	})
	insertErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loader_insert_errors_total",
		Help: "Total ClickHouse insert failures",
	})
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := store.New(ctx, cfg.ClickHouseDSN)
	if err != nil {
		log.Fatalf("clickhouse: %v", err)
	}
	defer client.Close()
	if err := client.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	reader := ikafka.NewReader(cfg.KafkaBrokers, cfg.KafkaTopicClicks, "click-loader-group")
	defer reader.Close()

	flusher := func(flushCtx context.Context, events []model.ClickEvent) error {
		return insertWithRetry(flushCtx, client, events)
	}
	b := batcher.New(cfg.BatchSize, cfg.BatchInterval, 30*time.Second, flusher)
	defer b.Close()

	go serveMetrics(cfg.LoaderMetricsAddr)
	go handleSignals(cancel)

	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("read raw click: %v", err)
			time.Sleep(time.Second)
			continue
		}
		clicksConsumed.Inc()

		var raw model.RawClick
		if err := json.Unmarshal(m.Value, &raw); err != nil {
			enrichErrors.Inc()
			log.Printf("decode raw click: %v", err)
			continue
		}
		evt, err := pipeline.Enrich(raw, cfg.IPHashSalt)
		if err != nil {
			enrichErrors.Inc()
			log.Printf("enrich click: %v", err)
			continue
		}
		if err := b.Add(evt); err != nil {
			log.Printf("batch add failed: %v", err)
		}
	}
	log.Println("click loader shutdown complete")
}

func insertWithRetry(ctx context.Context, client *store.Client, events []model.ClickEvent) error {
	const maxAttempts = 5
	backoff := 200 * time.Millisecond
	start := time.Now()
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := client.InsertClicks(ctx, events)
		if err == nil {
			insertDuration.Observe(time.Since(start).Seconds())
			batchSizeHistogram.Observe(float64(len(events)))
			return nil
		}
		insertErrors.Inc()
		if attempt == maxAttempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > 5*time.Second {
			backoff = 5 * time.Second
		}
	}
	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("loader metrics server failed: %v", err)
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	cancel()
}
