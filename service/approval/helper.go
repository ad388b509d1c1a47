package approval

import (
	"github.com/clearledger/policykit/model"
)

// RequiredApprovals returns how many approvals the threshold demands for the
// given approver count. A policy with no approvers can never auto-approve,
// so the requirement is reported as 1, unreachable without approvers, rather
// than the vacuous ceil(0/2)=0.
func RequiredApprovals(threshold model.Threshold, total int) int {
	if total == 0 {
		return 1
	}
	switch threshold {
	case model.ThresholdAny:
		return 1
	case model.ThresholdMajority:
		return (total + 1) / 2
	default: // all is the safe default for unknown thresholds
		return total
	}
}

// ThresholdMet reports whether the policy's recorded approvals satisfy its
// threshold.
func ThresholdMet(p *model.Policy) bool {
	total := len(p.Approvers)
	if total == 0 {
		return false
	}
	return p.ApprovedCount() >= RequiredApprovals(p.Threshold, total)
}

// Progress summarises the approval state of a policy for display.
type Progress struct {
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Pending  int `json:"pending"`
	Required int `json:"required"`
	Total    int `json:"total"`
}

// ProgressOf computes the approval progress of a policy.
func ProgressOf(p *model.Policy) Progress {
	total := len(p.Approvers)
	approved := p.ApprovedCount()
	rejected := p.RejectedCount()
	return Progress{
		Approved: approved,
		Rejected: rejected,
		Pending:  total - approved - rejected,
		Required: RequiredApprovals(p.Threshold, total),
		Total:    total,
	}
}

// PendingFilter narrows ListPending results.
type PendingFilter func(*model.Policy) bool

// WithApprover keeps policies where the given approver still has a pending
// decision.
func WithApprover(approverID string) PendingFilter {
	return func(p *model.Policy) bool {
		a := p.Approver(approverID)
		return a != nil && a.Pending()
	}
}

// WithPolicyType keeps policies of the given type.
func WithPolicyType(policyType string) PendingFilter {
	return func(p *model.Policy) bool {
		return p.Type == policyType
	}
}
