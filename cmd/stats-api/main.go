package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"link-analytics/internal/config"
	"link-analytics/internal/export"
	"link-analytics/internal/httpx"
	"link-analytics/internal/model"
	"link-analytics/internal/stats"
	"link-analytics/internal/store"
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

	var artifacts export.ArtifactStore
	if cfg.RedisAddr != "" {
		artifacts = export.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	} else {
		artifacts = export.NewMemoryStore()
	}

	aggregator := &stats.Aggregator{Events: client}
	srv := &server{
		cfg:      cfg,
		links:    client,
		composer: &stats.Composer{Aggregator: aggregator},
		realtime: &stats.Realtime{
			Events:        client,
			DemoCountries: demoBuckets(cfg.DemoCountries),
			DemoEnabled:   cfg.RealtimeDemo,
		},
		artifacts: artifacts,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpx.NewHTTPMetrics("stats_api").Handler())
	router.Use(httpx.CORSMiddleware(cfg.CORSAllowOrigins))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/v1/links/:id/stats", srv.handleLinkStats)
	router.GET("/v1/links/:id/export", srv.handleLinkExport)
	router.GET("/v1/links/:id/realtime", srv.handleLinkRealtime)
	router.GET("/v1/owners/:id/stats", srv.handleOwnerStats)
	router.GET("/v1/owners/:id/export", srv.handleOwnerExport)
	router.GET("/v1/owners/:id/summary", srv.handleOwnerSummary)

	httpServer := &http.Server{
		Addr:    cfg.StatsAddr,
		Handler: router,
	}

	go func() {
		log.Printf("starting stats API on %s", cfg.StatsAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("stats api failed: %v", err)
		}
	}()

	waitForSignal()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func demoBuckets(rows []config.DemoBucket) []model.DimensionBucket {
	out := make([]model.DimensionBucket, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.DimensionBucket{Key: r.Key, Count: r.Count})
	}
	return out
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}
