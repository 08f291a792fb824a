// Package docstore persists the primary-data document of each managed
// object as an InstallObject node in Neo4j.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/WessleyAI/installbom/pkg/repo"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// ErrNotFound is returned when no object has the requested id.
var ErrNotFound = repo.ErrNotFound

// Object is one managed object's stored primary data.
type Object struct {
	ID          string
	PrimaryData string
	UpdatedAt   time.Time
}

// objects is the subset of repo.Repository the store uses.
type objects interface {
	Get(ctx context.Context, id string) (Object, error)
	List(ctx context.Context, opts repo.ListOpts) ([]Object, error)
	Upsert(ctx context.Context, o Object) (Object, error)
}

// Store reads and writes InstallObject documents.
type Store struct {
	objects objects
	now     func() time.Time
}

// New creates a Store on a Neo4j driver.
func New(driver neo4j.DriverWithContext) *Store {
	return &Store{
		objects: repo.NewNeo4jRepo[Object, string](driver, "InstallObject", objectToMap, objectFromRecord),
		now:     nowUTC,
	}
}

// Get returns the object with the given id.
func (s *Store) Get(ctx context.Context, id string) (Object, error) {
	o, err := s.objects.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return Object{}, fmt.Errorf("docstore: get %s: %w", id, ErrNotFound)
		}
		return Object{}, fmt.Errorf("docstore: get %s: %w", id, err)
	}
	return o, nil
}

// Save stores the document, stamping UpdatedAt.
func (s *Store) Save(ctx context.Context, o Object) error {
	if o.ID == "" {
		return fmt.Errorf("docstore: save: empty object id")
	}
	o.UpdatedAt = s.now().UTC()
	if _, err := s.objects.Upsert(ctx, o); err != nil {
		return fmt.Errorf("docstore: save %s: %w", o.ID, err)
	}
	return nil
}

// ListIDs returns one page of object ids ordered by id.
func (s *Store) ListIDs(ctx context.Context, offset, limit int) ([]string, error) {
	page, err := s.objects.List(ctx, repo.ListOpts{Offset: offset, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("docstore: list: %w", err)
	}
	ids := make([]string, len(page))
	for i, o := range page {
		ids[i] = o.ID
	}
	return ids, nil
}

func objectToMap(o Object) map[string]any {
	return map[string]any{
		"id":           o.ID,
		"primary_data": o.PrimaryData,
		"updated_at":   o.UpdatedAt.UnixMilli(),
	}
}

func objectFromRecord(rec *neo4j.Record) (Object, error) {
	node, _, err := neo4j.GetRecordValue[dbtype.Node](rec, "n")
	if err != nil {
		return Object{}, err
	}
	o := Object{
		ID:          strProp(node.Props, "id"),
		PrimaryData: strProp(node.Props, "primary_data"),
	}
	if ms, ok := node.Props["updated_at"].(int64); ok && ms > 0 {
		o.UpdatedAt = time.UnixMilli(ms).UTC()
	}
	return o, nil
}

func strProp(props map[string]any, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func nowUTC() time.Time { return time.Now().UTC() }
