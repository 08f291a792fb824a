// Package main implements the installbom HTTP API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/WessleyAI/installbom/engine/bom"
	"github.com/WessleyAI/installbom/engine/catalog"
	"github.com/WessleyAI/installbom/engine/docstore"
	"github.com/WessleyAI/installbom/engine/rules"
	"github.com/WessleyAI/installbom/engine/settings"
	"github.com/WessleyAI/installbom/pkg/metrics"
	"github.com/WessleyAI/installbom/pkg/resilience"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Settings (SQLite) ---
	settingsStore, err := settings.Open(cfg.SettingsDB)
	if err != nil {
		return err
	}
	defer settingsStore.Close()

	// --- Documents and catalog ---
	reg := metrics.New()
	bomMetrics := bom.NewMetrics(reg)

	var (
		docs   *docstore.Store
		loader catalog.Loader
	)
	if cfg.Neo4j.URL != "" {
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4j.URL, neo4j.BasicAuth(cfg.Neo4j.User, cfg.Neo4j.Pass, ""))
		if err != nil {
			return fmt.Errorf("neo4j driver: %w", err)
		}
		defer driver.Close(context.Background())
		docs = docstore.New(driver)
		loader = catalog.NewNeo4jLoader(driver, settingsStore)
		logger.Info("using neo4j document store", "url", cfg.Neo4j.URL)
	} else {
		docs = docstore.NewMemory()
		loader = coefficientsOnly(settingsStore)
		logger.Warn("NEO4J_URL not set, using in-memory document store and empty catalog")
	}

	cached := catalog.NewCached(loader, catalog.CacheOpts{
		TTL:      cfg.CatalogTTL,
		Breaker:  newCatalogBreaker(logger),
		OnReload: bomMetrics.CatalogReload,
		Logger:   logger,
	})

	svc := bom.NewService(bom.Deps{
		Documents: docs,
		Catalog:   cached,
		Registry:  rules.Default(),
		Metrics:   bomMetrics,
		Logger:    logger,
	})

	s := &server{
		svc:        svc,
		docs:       docs,
		settings:   settingsStore,
		invalidate: cached.Invalidate,
		metrics:    reg,
		maxBody:    cfg.MaxBodyBytes(),
		log:        logger,
	}

	var limiter *resilience.Limiter
	if cfg.RateLimit.RPS > 0 {
		limiter = resilience.NewLimiter(resilience.LimiterOpts{Rate: cfg.RateLimit.RPS, Burst: cfg.RateLimit.Burst})
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.routes(cfg, limiter),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// coefficientsOnly loads an empty catalog carrying the stored coefficients.
func coefficientsOnly(src catalog.CoefficientSource) catalog.Loader {
	return catalog.LoaderFunc(func(ctx context.Context) (*catalog.Catalog, error) {
		coef, err := src.Coefficients(ctx)
		if err != nil {
			return nil, err
		}
		return catalog.Empty().WithCoefficients(coef), nil
	})
}

func newCatalogBreaker(logger *slog.Logger) *resilience.Breaker {
	opts := resilience.DefaultBreakerOpts
	opts.OnStateChange = func(from, to resilience.State) {
		logger.Warn("catalog breaker state changed", "from", from.String(), "to", to.String())
	}
	return resilience.NewBreaker(opts)
}
