package version_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearledger/policykit/model"
	"github.com/clearledger/policykit/service/version"
)

func basePolicy() *model.Policy {
	return &model.Policy{
		ID:            "p1",
		Name:          "Transfer Controls Q3",
		Description:   "Limits subscription volume",
		Type:          "transfer_limit",
		Jurisdiction:  "global",
		EffectiveDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Threshold:     model.ThresholdMajority,
		Status:        model.StatusDraft,
		Rules: []model.Rule{{ID: "r1", Type: model.RuleTransferLimit,
			TransferLimit: &model.TransferLimit{TransferAmount: 5000, Currency: "USD"}}},
		Approvers: []model.Approver{{ID: "a1", Name: "Sarah Chen"}},
	}
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	svc := version.New()

	first, err := svc.Record(ctx, "Sarah Chen", "policy created", nil, basePolicy())
	assert.NoError(t, err)
	assert.Equal(t, 1, first.Number)
	assert.Empty(t, first.Changes, "initial version carries no field changes")

	renamed := basePolicy()
	renamed.Name = "Transfer Controls Q4"
	renamed.Jurisdiction = "us"
	second, err := svc.Record(ctx, "Michael Rodriguez", "policy updated", basePolicy(), renamed)
	assert.NoError(t, err)
	assert.Equal(t, 2, second.Number)
	require.Len(t, second.Changes, 2)
	assert.Equal(t, version.Change{Field: "name", Old: "Transfer Controls Q3", New: "Transfer Controls Q4"}, second.Changes[0])
	assert.Equal(t, version.Change{Field: "jurisdiction", Old: "global", New: "us"}, second.Changes[1])

	versions, err := svc.List(ctx, "p1")
	assert.NoError(t, err)
	assert.Len(t, versions, 2)

	none, err := svc.List(ctx, "unknown")
	assert.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.Record(ctx, "x", "bad", nil, nil)
	assert.Error(t, err)
}

func TestVersionLookup(t *testing.T) {
	ctx := context.Background()
	svc := version.New()

	_, err := svc.Record(ctx, "Sarah Chen", "policy created", nil, basePolicy())
	assert.NoError(t, err)

	v, err := svc.Version(ctx, "p1", 1)
	assert.NoError(t, err)
	assert.Equal(t, "policy created", v.Summary)

	_, err = svc.Version(ctx, "p1", 5)
	assert.ErrorIs(t, err, version.ErrVersionNotFound)
}

func TestSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	svc := version.New()

	p := basePolicy()
	_, err := svc.Record(ctx, "Sarah Chen", "policy created", nil, p)
	assert.NoError(t, err)

	// later mutations of the policy must not rewrite recorded history
	p.Name = "mutated after recording"
	v, err := svc.Version(ctx, "p1", 1)
	assert.NoError(t, err)
	assert.Equal(t, "Transfer Controls Q3", v.Snapshot.Name)
}

func TestDiff(t *testing.T) {
	ctx := context.Background()
	svc := version.New()

	_, err := svc.Record(ctx, "Sarah Chen", "policy created", nil, basePolicy())
	assert.NoError(t, err)
	renamed := basePolicy()
	renamed.Name = "Transfer Controls Q4"
	_, err = svc.Record(ctx, "Michael Rodriguez", "policy updated", basePolicy(), renamed)
	assert.NoError(t, err)

	diff, err := svc.Diff(ctx, "p1", 1, 2)
	assert.NoError(t, err)
	assert.Contains(t, diff, "--- version 1")
	assert.Contains(t, diff, "+++ version 2")
	assert.Contains(t, diff, "Transfer Controls Q3")
	assert.Contains(t, diff, "Transfer Controls Q4")

	_, err = svc.Diff(ctx, "p1", 1, 9)
	assert.ErrorIs(t, err, version.ErrVersionNotFound)
}
