package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clearledger/policykit/service/dao"
)

type record struct {
	ID   string
	Text string
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[string, record](func(r *record) string { return r.ID })

	assert.ErrorIs(t, s.Save(ctx, nil), dao.ErrNilEntity)

	assert.NoError(t, s.Save(ctx, &record{ID: "r1", Text: "first"}))
	assert.NoError(t, s.Save(ctx, &record{ID: "r2", Text: "second"}))

	loaded, err := s.Load(ctx, "r1")
	assert.NoError(t, err)
	assert.Equal(t, "first", loaded.Text)

	_, err = s.Load(ctx, "r3")
	assert.ErrorIs(t, err, dao.ErrNotFound)

	all, err := s.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	assert.NoError(t, s.Save(ctx, &record{ID: "r1", Text: "updated"}))
	loaded, _ = s.Load(ctx, "r1")
	assert.Equal(t, "updated", loaded.Text)

	assert.NoError(t, s.Delete(ctx, "r1"))
	assert.ErrorIs(t, s.Delete(ctx, "r1"), dao.ErrNotFound)
	_, err = s.Load(ctx, "r1")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}
