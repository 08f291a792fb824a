package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/WessleyAI/installbom/engine/bom"
	"github.com/WessleyAI/installbom/engine/docstore"
	"github.com/WessleyAI/installbom/engine/domain"
	"github.com/WessleyAI/installbom/engine/snapshot"
	"github.com/WessleyAI/installbom/pkg/fn"
	"github.com/WessleyAI/installbom/pkg/resilience"
)

// idLister pages through stored object ids.
type idLister interface {
	ListIDs(ctx context.Context, offset, limit int) ([]string, error)
}

// migrateFunc migrates (or inspects) one object.
type migrateFunc func(ctx context.Context, id string) (bom.MigrationResult, error)

// Stats counts migration outcomes.
type Stats struct {
	Total    int
	Migrated int
	Skipped  int
	Failed   int
}

type migrator struct {
	ids      idLister
	migrate  migrateFunc
	limiter  *resilience.Limiter
	retry    fn.RetryOpts
	workers  int
	pageSize int
	log      *slog.Logger
}

// outcome carries a permanent failure through fn.Retry as a success so it
// is not retried.
type outcome struct {
	res bom.MigrationResult
	err error
}

// run migrates every stored object page by page.
func (m *migrator) run(ctx context.Context) (Stats, error) {
	var st Stats
	for offset := 0; ; offset += m.pageSize {
		ids, err := m.ids.ListIDs(ctx, offset, m.pageSize)
		if err != nil {
			return st, err
		}
		if len(ids) == 0 {
			return st, nil
		}
		results := fn.ParMapResult(ids, m.workers, func(id string) fn.Result[outcome] {
			return fn.Retry(ctx, m.retry, func(ctx context.Context) fn.Result[outcome] {
				return m.one(ctx, id)
			})
		})
		for i, r := range results {
			st.Total++
			o, err := r.Unwrap()
			if err == nil {
				err = o.err
			}
			switch {
			case err != nil:
				st.Failed++
				m.log.Error("migration failed", "object_id", ids[i], "err", err)
			case o.res.Migrated:
				st.Migrated++
			default:
				st.Skipped++
			}
		}
		m.log.Info("migration progress", "processed", st.Total, "migrated", st.Migrated, "skipped", st.Skipped, "failed", st.Failed)
		if err := ctx.Err(); err != nil {
			return st, err
		}
	}
}

func (m *migrator) one(ctx context.Context, id string) fn.Result[outcome] {
	var res bom.MigrationResult
	called := false
	call := func(ctx context.Context) error {
		var err error
		called = true
		res, err = m.migrate(ctx, id)
		return err
	}
	var err error
	if m.limiter != nil {
		err = m.limiter.CallWait(ctx, call)
	} else {
		err = call(ctx)
	}
	// A limiter that cannot hand out a token before the deadline is final.
	if err != nil && called && !permanent(err) {
		return fn.Err[outcome](err)
	}
	return fn.Ok(outcome{res: res, err: err})
}

// permanent reports errors a retry cannot fix.
func permanent(err error) bool {
	return errors.Is(err, docstore.ErrNotFound) ||
		errors.As(err, new(*domain.ParseError)) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// inspect reports what a migration would do without writing.
func inspect(docs bom.Documents) migrateFunc {
	return func(ctx context.Context, id string) (bom.MigrationResult, error) {
		res := bom.MigrationResult{ObjectID: id}
		obj, err := docs.Get(ctx, id)
		if err != nil {
			return res, err
		}
		v, err := snapshot.DetectVersion([]byte(obj.PrimaryData))
		if err != nil {
			return res, err
		}
		res.From = v
		return res, nil
	}
}
