package approval

import (
	"context"

	"github.com/clearledger/policykit/model"
	"github.com/clearledger/policykit/service/notification"
)

// Service defines the approval engine interface.
type Service interface {
	// RecordDecision applies one approver's verdict to a policy and returns
	// the updated policy snapshot. It fails with ErrInvalidActor when the
	// approver is unknown or has already decided, with ErrPolicyClosed once
	// the policy is terminal and with ErrPolicyNotSubmitted while it is
	// still a draft.
	RecordDecision(ctx context.Context, policyID, approverID string, decision Decision, comment string) (*model.Policy, error)

	// ListPending returns the policies still awaiting decisions, optionally
	// narrowed by filters.
	ListPending(ctx context.Context, filters ...PendingFilter) ([]*model.Policy, error)

	// Notifications exposes the sink receiving workflow notifications.
	Notifications() *notification.Service
}
