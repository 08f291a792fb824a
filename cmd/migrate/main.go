// Command migrate rewrites every stored legacy primary-data document in the
// graph layout. Graph-layout and blank documents are left untouched.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/WessleyAI/installbom/engine/bom"
	"github.com/WessleyAI/installbom/engine/docstore"
	"github.com/WessleyAI/installbom/pkg/fn"
	"github.com/WessleyAI/installbom/pkg/resilience"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func main() {
	var (
		pageSize = flag.Int("page", 200, "object ids fetched per page")
		workers  = flag.Int("workers", 4, "concurrent migrations")
		rps      = flag.Float64("rate", 20, "max migrations per second (0 = unlimited)")
		dryRun   = flag.Bool("dry-run", false, "report versions without writing")
	)
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	neo4jURL := envOr("NEO4J_URL", "neo4j://localhost:7687")
	driver, err := neo4j.NewDriverWithContext(neo4jURL, neo4j.BasicAuth(envOr("NEO4J_USER", "neo4j"), envOr("NEO4J_PASS", "password"), ""))
	if err != nil {
		log.Error("neo4j connect failed", "err", err)
		os.Exit(1)
	}
	defer driver.Close(context.Background())
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Error("neo4j verify failed", "err", err)
		os.Exit(1)
	}

	docs := docstore.New(driver)
	svc := bom.NewService(bom.Deps{Documents: docs, Logger: log})

	m := &migrator{
		ids:      docs,
		migrate:  svc.MigrateObject,
		limiter:  resilience.NewLimiter(resilience.LimiterOpts{Rate: *rps, Burst: *workers}),
		retry:    fn.DefaultRetry,
		workers:  *workers,
		pageSize: *pageSize,
		log:      log,
	}
	if *dryRun {
		m.migrate = inspect(docs)
	}

	start := time.Now()
	st, err := m.run(ctx)
	log.Info("migration done",
		"total", st.Total, "migrated", st.Migrated, "skipped", st.Skipped, "failed", st.Failed,
		"dry_run", *dryRun, "duration", time.Since(start))
	if err != nil {
		log.Error("migration aborted", "err", err)
		os.Exit(1)
	}
	if st.Failed > 0 {
		os.Exit(2)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
