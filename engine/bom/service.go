package bom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/WessleyAI/installbom/engine/catalog"
	"github.com/WessleyAI/installbom/engine/docstore"
	"github.com/WessleyAI/installbom/engine/report"
	"github.com/WessleyAI/installbom/engine/rules"
	"github.com/WessleyAI/installbom/engine/snapshot"
)

// Documents loads and stores primary-data documents by object id.
type Documents interface {
	Get(ctx context.Context, id string) (docstore.Object, error)
	Save(ctx context.Context, o docstore.Object) error
}

// CatalogSource provides the current catalog. Implementations return a
// usable catalog even when they also return an error.
type CatalogSource interface {
	Current(ctx context.Context) (*catalog.Catalog, error)
}

// Deps holds the external dependencies of the service.
type Deps struct {
	Documents Documents
	Catalog   CatalogSource
	Registry  *rules.Registry
	Metrics   *Metrics
	Logger    *slog.Logger
}

// Service summarizes and migrates stored objects.
type Service struct {
	docs    Documents
	catalog CatalogSource
	rules   *rules.Registry
	metrics *Metrics
	log     *slog.Logger
}

// NewService creates a Service, filling unset deps with defaults.
func NewService(d Deps) *Service {
	s := &Service{
		docs:    d.Documents,
		catalog: d.Catalog,
		rules:   d.Registry,
		metrics: d.Metrics,
		log:     d.Logger,
	}
	if s.catalog == nil {
		s.catalog = catalog.Static{}
	}
	if s.rules == nil {
		s.rules = rules.Default()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Summarize runs the traced pipeline over a raw document with the current
// catalog. It never fails; parse errors are reported inside the summary.
func (s *Service) Summarize(ctx context.Context, raw string) report.Summary {
	start := time.Now()
	s.metrics.begin()
	cat, err := s.catalog.Current(ctx)
	if err != nil {
		s.log.Error("bom: catalog unavailable, using empty catalog", "error", err)
	}
	out := run(ctx, NewPipeline(cat, s.rules, s.log), raw)
	switch {
	case out.ParseError != "":
		s.log.Warn("bom: document failed to parse", "error", out.ParseError)
		s.metrics.summary("parse_error", start)
	case out.Empty:
		s.metrics.summary("empty", start)
	default:
		s.metrics.summary("ok", start)
	}
	return out
}

// SummarizeObject loads an object's document and summarizes it.
func (s *Service) SummarizeObject(ctx context.Context, objectID string) (report.Summary, error) {
	obj, err := s.load(ctx, objectID)
	if err != nil {
		return report.Summary{}, err
	}
	return s.Summarize(ctx, obj.PrimaryData), nil
}

// MigrationResult describes what MigrateObject did.
type MigrationResult struct {
	ObjectID string           `json:"objectId"`
	From     snapshot.Version `json:"from"`
	Migrated bool             `json:"migrated"`
}

// MigrateObject rewrites a stored legacy document in the graph layout.
// Graph-layout and blank documents are left untouched.
func (s *Service) MigrateObject(ctx context.Context, objectID string) (MigrationResult, error) {
	res := MigrationResult{ObjectID: objectID}
	obj, err := s.load(ctx, objectID)
	if err != nil {
		s.metrics.migrated("failed")
		return res, err
	}
	if strings.TrimSpace(obj.PrimaryData) == "" {
		s.metrics.migrated("skipped")
		return res, nil
	}
	v, err := snapshot.DetectVersion([]byte(obj.PrimaryData))
	if err != nil {
		s.metrics.migrated("failed")
		return res, fmt.Errorf("bom: migrate %s: %w", objectID, err)
	}
	res.From = v
	if v != snapshot.V1 {
		s.metrics.migrated("skipped")
		return res, nil
	}
	converted, err := snapshot.ConvertLegacyToCanonical(obj.PrimaryData).Unwrap()
	if err != nil {
		s.metrics.migrated("failed")
		return res, fmt.Errorf("bom: migrate %s: %w", objectID, err)
	}
	obj.PrimaryData = converted
	if err := s.docs.Save(ctx, obj); err != nil {
		s.metrics.migrated("failed")
		return res, fmt.Errorf("bom: migrate %s: %w", objectID, err)
	}
	res.Migrated = true
	s.metrics.migrated("migrated")
	s.log.Info("bom: document migrated", "object_id", objectID, "version", snapshot.V2.String())
	return res, nil
}

func (s *Service) load(ctx context.Context, objectID string) (docstore.Object, error) {
	if s.docs == nil {
		return docstore.Object{}, fmt.Errorf("bom: load %s: %w", objectID, docstore.ErrNotFound)
	}
	obj, err := s.docs.Get(ctx, objectID)
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			s.log.Error("bom: document load failed", "object_id", objectID, "error", err)
		}
		return docstore.Object{}, fmt.Errorf("bom: load %s: %w", objectID, err)
	}
	return obj, nil
}
