package catalog

import (
	"context"
	"fmt"

	"github.com/WessleyAI/installbom/engine/domain"
	"github.com/WessleyAI/installbom/pkg/repo"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

const pageSize = 500

// Lister is the paged read side of a repository.
type Lister[T any] interface {
	List(ctx context.Context, opts repo.ListOpts) ([]T, error)
}

// CoefficientSource provides the global coefficients.
type CoefficientSource interface {
	Coefficients(ctx context.Context) (Coefficients, error)
}

// Loader materializes a Catalog from its backing stores.
type Loader interface {
	Load(ctx context.Context) (*Catalog, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (*Catalog, error)

func (f LoaderFunc) Load(ctx context.Context) (*Catalog, error) { return f(ctx) }

// StoreLoader reads CableType and DeviceCableProfile nodes and merges them
// with the coefficients source.
type StoreLoader struct {
	Cables       Lister[CableType]
	Profiles     Lister[DeviceProfile]
	Coefficients CoefficientSource
}

// NewNeo4jLoader wires a StoreLoader onto a Neo4j driver. The catalog
// repositories are read-only.
func NewNeo4jLoader(driver neo4j.DriverWithContext, coef CoefficientSource) *StoreLoader {
	return &StoreLoader{
		Cables: repo.NewNeo4jRepo[CableType, int64](
			driver, "CableType", nil, cableFromRecord,
		),
		Profiles: repo.NewNeo4jRepo[DeviceProfile, int64](
			driver, "DeviceCableProfile", nil, profileFromRecord,
			repo.WithIDKey[DeviceProfile, int64]("device_type_id"),
		),
		Coefficients: coef,
	}
}

// Load implements Loader.
func (l *StoreLoader) Load(ctx context.Context) (*Catalog, error) {
	cables, err := listAll(ctx, l.Cables)
	if err != nil {
		return nil, fmt.Errorf("catalog: load cables: %w", err)
	}
	profiles, err := listAll(ctx, l.Profiles)
	if err != nil {
		return nil, fmt.Errorf("catalog: load profiles: %w", err)
	}
	var coef Coefficients
	if l.Coefficients != nil {
		if coef, err = l.Coefficients.Coefficients(ctx); err != nil {
			return nil, fmt.Errorf("catalog: load coefficients: %w", err)
		}
	}
	return New(cables, profiles, coef), nil
}

func listAll[T any](ctx context.Context, l Lister[T]) ([]T, error) {
	if l == nil {
		return nil, nil
	}
	var all []T
	for offset := 0; ; offset += pageSize {
		page, err := l.List(ctx, repo.ListOpts{Offset: offset, Limit: pageSize})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

func cableFromRecord(rec *neo4j.Record) (CableType, error) {
	node, _, err := neo4j.GetRecordValue[dbtype.Node](rec, "n")
	if err != nil {
		return CableType{}, err
	}
	return CableType{
		ID:       intProp(node.Props, "id"),
		Name:     strProp(node.Props, "name"),
		Function: domain.ParseCableFunction(strProp(node.Props, "function")),
	}, nil
}

func profileFromRecord(rec *neo4j.Record) (DeviceProfile, error) {
	node, _, err := neo4j.GetRecordValue[dbtype.Node](rec, "n")
	if err != nil {
		return DeviceProfile{}, err
	}
	p := DeviceProfile{
		DeviceTypeID:   intProp(node.Props, "device_type_id"),
		DeviceTypeName: strProp(node.Props, "device_type_name"),
	}
	if ids, ok := node.Props["cable_type_ids"].([]any); ok {
		for _, v := range ids {
			if id, ok := v.(int64); ok {
				p.CableTypeIDs = append(p.CableTypeIDs, id)
			}
		}
	}
	return p, nil
}

func strProp(props map[string]any, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func intProp(props map[string]any, key string) int64 {
	switch v := props[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}
