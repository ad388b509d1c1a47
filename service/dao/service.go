package dao

import (
	"context"
)

// Service is a generic persistence contract for policy-store entities. The
// core engines take and return snapshots through this interface instead of
// mutating shared state directly, which keeps concurrent access and testing
// tractable.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
