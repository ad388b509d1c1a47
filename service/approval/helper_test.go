package approval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clearledger/policykit/model"
	"github.com/clearledger/policykit/service/approval"
)

func TestRequiredApprovals(t *testing.T) {
	testCases := []struct {
		name      string
		threshold model.Threshold
		total     int
		expected  int
	}{
		{name: "any of three", threshold: model.ThresholdAny, total: 3, expected: 1},
		{name: "majority of three", threshold: model.ThresholdMajority, total: 3, expected: 2},
		{name: "majority of four", threshold: model.ThresholdMajority, total: 4, expected: 2},
		{name: "majority of one", threshold: model.ThresholdMajority, total: 1, expected: 1},
		{name: "all of three", threshold: model.ThresholdAll, total: 3, expected: 3},
		{name: "unknown threshold defaults to all", threshold: "most", total: 3, expected: 3},
		{name: "no approvers never satisfiable", threshold: model.ThresholdMajority, total: 0, expected: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, approval.RequiredApprovals(tc.threshold, tc.total))
		})
	}
}

func TestThresholdMet(t *testing.T) {
	p := &model.Policy{
		Threshold: model.ThresholdMajority,
		Approvers: []model.Approver{
			{ID: "a1", Status: model.DecisionApproved},
			{ID: "a2"},
			{ID: "a3"},
		},
	}
	assert.False(t, approval.ThresholdMet(p))

	p.Approvers[1].Status = model.DecisionApproved
	assert.True(t, approval.ThresholdMet(p))

	empty := &model.Policy{Threshold: model.ThresholdMajority}
	assert.False(t, approval.ThresholdMet(empty), "zero approvers can never meet a threshold")
}

func TestProgressOf(t *testing.T) {
	p := &model.Policy{
		Threshold: model.ThresholdAll,
		Approvers: []model.Approver{
			{ID: "a1", Status: model.DecisionApproved},
			{ID: "a2", Status: model.DecisionRejected},
			{ID: "a3"},
		},
	}
	progress := approval.ProgressOf(p)
	assert.Equal(t, approval.Progress{Approved: 1, Rejected: 1, Pending: 1, Required: 3, Total: 3}, progress)
}

func TestPendingFilters(t *testing.T) {
	p := &model.Policy{
		Type: "transfer_limit",
		Approvers: []model.Approver{
			{ID: "a1", Status: model.DecisionApproved},
			{ID: "a2"},
		},
	}
	assert.False(t, approval.WithApprover("a1")(p))
	assert.True(t, approval.WithApprover("a2")(p))
	assert.False(t, approval.WithApprover("missing")(p))
	assert.True(t, approval.WithPolicyType("transfer_limit")(p))
	assert.False(t, approval.WithPolicyType("kyc_verification")(p))
}
