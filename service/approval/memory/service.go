package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/clearledger/policykit/internal/clock"
	"github.com/clearledger/policykit/model"
	"github.com/clearledger/policykit/service/approval"
	"github.com/clearledger/policykit/service/dao"
	"github.com/clearledger/policykit/service/notification"
)

type service struct {
	policyDao dao.Service[string, model.Policy]
	notifier  *notification.Service

	// serialises decisions so that two concurrent approvals cannot both
	// read a stale pending approver state
	mu sync.Mutex
}

// Option customises the engine.
type Option func(*service)

// WithNotificationService attaches an externally owned notification sink so
// that several engines or the surrounding application can share one list.
func WithNotificationService(notifier *notification.Service) Option {
	return func(s *service) { s.notifier = notifier }
}

// New creates an approval engine over the supplied policy store.
func New(policyDao dao.Service[string, model.Policy], options ...Option) approval.Service {
	ret := &service{
		policyDao: policyDao,
		notifier:  notification.New(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (s *service) RecordDecision(ctx context.Context, policyID, approverID string, decision approval.Decision, comment string) (*model.Policy, error) {
	if !decision.Valid() {
		return nil, fmt.Errorf("%w: %s", approval.ErrInvalidDecision, decision)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	policy, err := s.policyDao.Load(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy %s: %w", policyID, err)
	}
	if policy.Status.Terminal() {
		return nil, fmt.Errorf("policy %s is %s: %w", policyID, policy.Status, approval.ErrPolicyClosed)
	}
	// only submitted policies accept decisions; drafts have no frozen rule
	// set or approver list to decide on
	if policy.Status != model.StatusPending && policy.Status != model.StatusInProgress {
		return nil, fmt.Errorf("policy %s is %s: %w", policyID, policy.Status, approval.ErrPolicyNotSubmitted)
	}

	updated := policy.Clone()
	approver := updated.Approver(approverID)
	if approver == nil || !approver.Pending() {
		return nil, fmt.Errorf("approver %s on policy %s: %w", approverID, policyID, approval.ErrInvalidActor)
	}

	now := clock.Now()
	approver.Comment = comment
	approver.Timestamp = &now

	switch decision {
	case approval.Rejected:
		// a single rejection vetoes the policy regardless of threshold
		approver.Status = model.DecisionRejected
		updated.Status = model.StatusRejected
	case approval.Approved:
		approver.Status = model.DecisionApproved
		if approval.ThresholdMet(updated) {
			updated.Status = model.StatusApproved
		} else {
			updated.Status = model.StatusInProgress
		}
	}
	updated.ModifiedAt = now

	if err = s.policyDao.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save policy %s: %w", policyID, err)
	}

	switch updated.Status {
	case model.StatusApproved:
		s.notifier.Append(ctx, updated.ID, updated.Name, notification.TypeApprovalComplete)
	case model.StatusRejected:
		s.notifier.Append(ctx, updated.ID, updated.Name, notification.TypeApprovalRejected)
	}
	return updated, nil
}

func (s *service) ListPending(ctx context.Context, filters ...approval.PendingFilter) ([]*model.Policy, error) {
	all, err := s.policyDao.List(ctx, dao.NewParameter("Status",
		string(model.StatusPending), string(model.StatusInProgress)))
	if err != nil {
		return nil, err
	}
	pending := make([]*model.Policy, 0, len(all))
outer:
	for _, p := range all {
		for _, filter := range filters {
			if !filter(p) {
				continue outer
			}
		}
		pending = append(pending, p)
	}
	return pending, nil
}

func (s *service) Notifications() *notification.Service {
	return s.notifier
}

var _ approval.Service = (*service)(nil)
