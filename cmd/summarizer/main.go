// Command summarizer answers summarize and migrate requests over NATS and
// exposes a gRPC health endpoint.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/WessleyAI/installbom/engine/bom"
	"github.com/WessleyAI/installbom/engine/catalog"
	"github.com/WessleyAI/installbom/engine/docstore"
	"github.com/WessleyAI/installbom/engine/settings"
	"github.com/WessleyAI/installbom/pkg/metrics"
	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var met = metrics.New()

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("summarizer exited with error", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ttl, err := time.ParseDuration(envOr("CATALOG_TTL", "5m"))
	if err != nil {
		return fmt.Errorf("CATALOG_TTL: %w", err)
	}
	metricsPort, err := strconv.Atoi(envOr("METRICS_PORT", "9092"))
	if err != nil {
		return fmt.Errorf("METRICS_PORT: %w", err)
	}

	met.ServeAsync(metricsPort, log)

	st, err := settings.Open(envOr("SETTINGS_DB", "data/settings.db"))
	if err != nil {
		return err
	}
	defer st.Close()

	// Connect Neo4j
	neo4jURL := envOr("NEO4J_URL", "neo4j://localhost:7687")
	driver, err := neo4j.NewDriverWithContext(neo4jURL, neo4j.BasicAuth(envOr("NEO4J_USER", "neo4j"), envOr("NEO4J_PASS", "password"), ""))
	if err != nil {
		return fmt.Errorf("neo4j driver: %w", err)
	}
	defer driver.Close(context.Background())
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("neo4j verify: %w", err)
	}
	log.Info("connected to Neo4j", "url", neo4jURL)

	bomMetrics := bom.NewMetrics(met)
	svc := bom.NewService(bom.Deps{
		Documents: docstore.New(driver),
		Catalog: catalog.NewCached(catalog.NewNeo4jLoader(driver, st), catalog.CacheOpts{
			TTL:      ttl,
			OnReload: bomMetrics.CatalogReload,
			Logger:   log,
		}),
		Metrics: bomMetrics,
		Logger:  log,
	})

	// gRPC health
	hs := health.NewServer()
	lis, err := net.Listen("tcp", ":"+envOr("GRPC_PORT", "50061"))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	go func() {
		if err := gs.Serve(lis); err != nil {
			log.Error("grpc server stopped", "err", err)
		}
	}()
	defer gs.GracefulStop()

	// Connect NATS
	natsURL := envOr("NATS_URL", nats.DefaultURL)
	nc, err := nats.Connect(natsURL, natsOptions(hs, log)...)
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Drain()

	w := &worker{nc: nc, svc: svc, log: log}
	if _, err := w.start(); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	log.Info("summarizer ready", "nats", natsURL, "subjects", []string{SubjectSummarize, SubjectMigrate})

	<-ctx.Done()
	log.Info("shutdown signal received")
	hs.Shutdown()
	return nil
}

// natsOptions keeps the health status in step with the NATS connection.
func natsOptions(hs *health.Server, log *slog.Logger) []nats.Option {
	return []nats.Option{
		nats.Name("installbom-summarizer"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", "err", err)
			hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", "url", nc.ConnectedUrl())
			hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		}),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
