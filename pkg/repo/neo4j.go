package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// result is the minimal interface needed from a neo4j result.
type result interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
}

// runner is the minimal interface needed from a neo4j session.
type runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (result, error)
	Close(ctx context.Context) error
}

// errReadOnly is returned by Upsert on a repository built without toMap.
var errReadOnly = errors.New("repository is read-only")

// Neo4jRepo stores one node label. Every node carries its id in the idKey
// property. A nil toMap makes the repository read-only.
type Neo4jRepo[T any, ID comparable] struct {
	driver     neo4j.DriverWithContext
	label      string
	idKey      string
	toMap      func(T) map[string]any
	fromRecord func(*neo4j.Record) (T, error)
	newSession func(ctx context.Context) runner
}

// Neo4jOption configures a Neo4jRepo.
type Neo4jOption[T any, ID comparable] func(*Neo4jRepo[T, ID])

// WithIDKey sets the property name used as the ID (default "id").
func WithIDKey[T any, ID comparable](key string) Neo4jOption[T, ID] {
	return func(r *Neo4jRepo[T, ID]) { r.idKey = key }
}

// NewNeo4jRepo creates a repository for label. Records returned by the
// queries hold the node in their first column.
func NewNeo4jRepo[T any, ID comparable](
	driver neo4j.DriverWithContext,
	label string,
	toMap func(T) map[string]any,
	fromRecord func(*neo4j.Record) (T, error),
	opts ...Neo4jOption[T, ID],
) *Neo4jRepo[T, ID] {
	r := &Neo4jRepo[T, ID]{
		driver:     driver,
		label:      label,
		idKey:      "id",
		toMap:      toMap,
		fromRecord: fromRecord,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

var _ Repository[any, string] = (*Neo4jRepo[any, string])(nil)

type sessionAdapter struct{ neo4j.SessionWithContext }

func (a sessionAdapter) Run(ctx context.Context, cypher string, params map[string]any) (result, error) {
	return a.SessionWithContext.Run(ctx, cypher, params)
}

func (r *Neo4jRepo[T, ID]) session(ctx context.Context) runner {
	if r.newSession != nil {
		return r.newSession(ctx)
	}
	return sessionAdapter{r.driver.NewSession(ctx, neo4j.SessionConfig{})}
}

// query runs cypher in a fresh session and hands every decoded row to yield.
func (r *Neo4jRepo[T, ID]) query(ctx context.Context, op, cypher string, params map[string]any, yield func(T)) error {
	sess := r.session(ctx)
	defer sess.Close(ctx)

	res, err := sess.Run(ctx, cypher, params)
	if err != nil {
		return fmt.Errorf("repo: %s %s: %w", op, r.label, err)
	}
	for res.Next(ctx) {
		item, err := r.fromRecord(res.Record())
		if err != nil {
			return fmt.Errorf("repo: %s %s: decode: %w", op, r.label, err)
		}
		yield(item)
	}
	return nil
}

// single is query for statements returning at most one node. missing is
// returned when there is none.
func (r *Neo4jRepo[T, ID]) single(ctx context.Context, op, cypher string, params map[string]any, missing error) (T, error) {
	var (
		out   T
		found bool
	)
	err := r.query(ctx, op, cypher, params, func(t T) {
		if !found {
			out, found = t, true
		}
	})
	if err == nil && !found {
		err = missing
	}
	return out, err
}

// Get returns the node whose id property equals id.
func (r *Neo4jRepo[T, ID]) Get(ctx context.Context, id ID) (T, error) {
	cypher := fmt.Sprintf("MATCH (n:%s {%s: $id}) RETURN n", r.label, r.idKey)
	return r.single(ctx, "get", cypher, map[string]any{"id": id},
		fmt.Errorf("repo: %s %v: %w", r.label, id, ErrNotFound))
}

// List returns one page of nodes ordered by id.
func (r *Neo4jRepo[T, ID]) List(ctx context.Context, opts ListOpts) ([]T, error) {
	cypher := fmt.Sprintf("MATCH (n:%s) RETURN n ORDER BY n.%s SKIP $offset LIMIT $limit", r.label, r.idKey)
	var items []T
	err := r.query(ctx, "list", cypher, map[string]any{"offset": opts.Offset, "limit": opts.limit()},
		func(t T) { items = append(items, t) })
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert creates the node or merges props into the existing one.
func (r *Neo4jRepo[T, ID]) Upsert(ctx context.Context, entity T) (T, error) {
	if r.toMap == nil {
		var zero T
		return zero, fmt.Errorf("repo: upsert %s: %w", r.label, errReadOnly)
	}
	props := r.toMap(entity)
	cypher := fmt.Sprintf("MERGE (n:%s {%s: $id}) SET n += $props RETURN n", r.label, r.idKey)
	return r.single(ctx, "upsert", cypher, map[string]any{"id": props[r.idKey], "props": props},
		fmt.Errorf("repo: upsert %s: no record returned", r.label))
}
