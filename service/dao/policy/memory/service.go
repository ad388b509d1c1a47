package memory

import (
	"context"
	"sort"

	"github.com/clearledger/policykit/model"
	"github.com/clearledger/policykit/service/dao"
	"github.com/clearledger/policykit/service/dao/criteria"
	"github.com/clearledger/policykit/service/dao/store"
)

// Service implements an in-memory, thread-safe policy store on top of the
// generic MemoryStore. Save takes and Load returns deep copies so that
// callers never share mutable state with the store.
type Service struct {
	*store.MemoryStore[string, model.Policy]
}

var _ dao.Service[string, model.Policy] = (*Service)(nil)

// New creates an empty in-memory policy store.
func New() *Service {
	return &Service{
		MemoryStore: store.NewMemoryStore[string, model.Policy](
			func(p *model.Policy) string { return p.ID }),
	}
}

func (s *Service) Save(ctx context.Context, p *model.Policy) error {
	if p == nil {
		return dao.ErrNilEntity
	}
	if p.ID == "" {
		return dao.ErrInvalidID
	}
	return s.MemoryStore.Save(ctx, p.Clone())
}

func (s *Service) Load(ctx context.Context, id string) (*model.Policy, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	p, err := s.MemoryStore.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	return s.MemoryStore.Delete(ctx, id)
}

// List returns policy snapshots, optionally filtered by a "Status"
// parameter, ordered by ID for deterministic output.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Policy, error) {
	stored, err := s.MemoryStore.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Policy, 0, len(stored))
	for _, p := range stored {
		if !criteria.FilterByStatus(string(p.Status), parameters) {
			continue
		}
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
