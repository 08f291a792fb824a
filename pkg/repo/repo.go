// Package repo defines the generic Repository interface and list options.
package repo

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no entity matches the requested id.
var ErrNotFound = errors.New("not found")

// Repository reads entities by id or by page and writes them by id.
type Repository[T any, ID comparable] interface {
	Get(ctx context.Context, id ID) (T, error)
	List(ctx context.Context, opts ListOpts) ([]T, error)
	Upsert(ctx context.Context, entity T) (T, error)
}

// ListOpts controls pagination for List operations. Results are ordered
// by id so consecutive pages are stable.
type ListOpts struct {
	Offset int
	Limit  int
}

const defaultLimit = 100

func (o ListOpts) limit() int {
	if o.Limit <= 0 {
		return defaultLimit
	}
	return o.Limit
}
