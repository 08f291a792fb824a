// Package bom composes the summarization pipeline: parse, aggregate and
// build the report. Summarize is pure; Service adds document loading,
// catalog caching, logging and metrics around it.
package bom

import (
	"context"
	"log/slog"
	"time"

	"github.com/WessleyAI/installbom/engine/aggregate"
	"github.com/WessleyAI/installbom/engine/catalog"
	"github.com/WessleyAI/installbom/engine/report"
	"github.com/WessleyAI/installbom/engine/rules"
	"github.com/WessleyAI/installbom/engine/snapshot"
	"github.com/WessleyAI/installbom/pkg/fn"
)

// Aggregates bundles the parsed snapshot with every aggregator output.
type Aggregates struct {
	Snapshot  snapshot.Snapshot
	Devices   aggregate.DeviceSummary
	Cables    aggregate.CableSummary
	Materials aggregate.MaterialSummary
}

// Parse is the parser boundary stage.
var Parse fn.Stage[string, snapshot.Snapshot] = func(_ context.Context, raw string) fn.Result[snapshot.Snapshot] {
	return snapshot.Parse(raw)
}

// NewAggregate returns the stage running the three aggregators.
func NewAggregate(cat *catalog.Catalog, reg *rules.Registry) fn.Stage[snapshot.Snapshot, Aggregates] {
	return fn.MapStage(func(s snapshot.Snapshot) Aggregates {
		dev := aggregate.SummarizeDevices(s, reg)
		cab := aggregate.SummarizeCables(s, cat)
		return Aggregates{
			Snapshot:  s,
			Devices:   dev,
			Cables:    cab,
			Materials: aggregate.SummarizeMaterials(s, dev, cab, cat.Coefficients()),
		}
	})
}

// Report is the report builder stage.
var Report = fn.MapStage(func(a Aggregates) report.Summary {
	return report.Build(a.Snapshot, a.Devices, a.Cables, a.Materials)
})

// Logged wraps stage with debug logs on entry and exit. The exit log carries
// the time spent in stage and its error, if any.
func Logged[In, Out any](name string, log *slog.Logger, stage fn.Stage[In, Out]) fn.Stage[In, Out] {
	entered := fn.Then(fn.TapStage(func(_ context.Context, _ In) {
		log.Debug("stage.enter", "stage", name)
	}), stage)
	return func(ctx context.Context, in In) fn.Result[Out] {
		start := time.Now()
		res := entered(ctx, in)
		if _, err := res.Unwrap(); err != nil {
			log.Debug("stage.exit", "stage", name, "duration", time.Since(start), "error", err)
			return res
		}
		log.Debug("stage.exit", "stage", name, "duration", time.Since(start))
		return res
	}
}

// NewPipeline wires parse, aggregate and report with tracing and debug
// logging. Only the parse stage can fail.
func NewPipeline(cat *catalog.Catalog, reg *rules.Registry, log *slog.Logger) fn.Stage[string, report.Summary] {
	if log == nil {
		log = slog.Default()
	}
	parsed := Logged("parse", log, fn.TracedStage("bom.parse", Parse))
	aggregated := Logged("aggregate", log, fn.TracedStage("bom.aggregate", NewAggregate(cat, reg)))
	reported := Logged("report", log, fn.TracedStage("bom.report", Report))
	return fn.Then(parsed, fn.Then(aggregated, reported))
}

// Summarize runs the pipeline without tracing or logging. A document that
// fails to parse yields a summary with HasData false and the parse message.
func Summarize(raw string, cat *catalog.Catalog, reg *rules.Registry) report.Summary {
	return run(context.Background(), fn.Then(Parse, fn.Then(NewAggregate(cat, reg), Report)), raw)
}

func run(ctx context.Context, p fn.Stage[string, report.Summary], raw string) report.Summary {
	s, err := p(ctx, raw).Unwrap()
	if err != nil {
		return report.Failed(err)
	}
	return s
}
