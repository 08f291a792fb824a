package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/WessleyAI/installbom/engine/bom"
	"github.com/WessleyAI/installbom/engine/report"
	"github.com/WessleyAI/installbom/pkg/natsutil"
	"github.com/nats-io/nats.go"
)

// Subjects served by the worker.
const (
	SubjectSummarize = "installbom.summarize"
	SubjectMigrate   = "installbom.migrate"
	SubjectMigrated  = "installbom.events.migrated"
	QueueGroup       = "installbom-summarizer"
)

var errNoInput = errors.New("objectId or document is required")

// SummarizeRequest names a stored object or carries a document inline.
// ObjectID wins when both are set.
type SummarizeRequest struct {
	ObjectID string  `json:"objectId,omitempty"`
	Document *string `json:"document,omitempty"`
}

// MigrateRequest names the object to migrate.
type MigrateRequest struct {
	ObjectID string `json:"objectId"`
}

type worker struct {
	nc  *nats.Conn
	svc *bom.Service
	log *slog.Logger
}

// start registers the worker's queue subscriptions.
func (w *worker) start() ([]*nats.Subscription, error) {
	sum, err := natsutil.Respond(w.nc, SubjectSummarize, QueueGroup, w.log, w.summarize)
	if err != nil {
		return nil, err
	}
	mig, err := natsutil.Respond(w.nc, SubjectMigrate, QueueGroup, w.log, w.migrate)
	if err != nil {
		sum.Unsubscribe()
		return nil, err
	}
	return []*nats.Subscription{sum, mig}, nil
}

func (w *worker) summarize(ctx context.Context, req SummarizeRequest) (report.Summary, error) {
	switch {
	case req.ObjectID != "":
		return w.svc.SummarizeObject(ctx, req.ObjectID)
	case req.Document != nil:
		return w.svc.Summarize(ctx, *req.Document), nil
	default:
		return report.Summary{}, errNoInput
	}
}

func (w *worker) migrate(ctx context.Context, req MigrateRequest) (bom.MigrationResult, error) {
	if req.ObjectID == "" {
		return bom.MigrationResult{}, errNoInput
	}
	res, err := w.svc.MigrateObject(ctx, req.ObjectID)
	if err != nil {
		return res, err
	}
	if res.Migrated {
		if err := natsutil.Publish(ctx, w.nc, SubjectMigrated, res); err != nil {
			w.log.Warn("migrated event publish failed", "object_id", req.ObjectID, "err", err)
		}
	}
	return res, nil
}
