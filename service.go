package policykit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clearledger/policykit/actor"
	"github.com/clearledger/policykit/conflict"
	"github.com/clearledger/policykit/internal/clock"
	"github.com/clearledger/policykit/internal/idgen"
	"github.com/clearledger/policykit/metrics"
	"github.com/clearledger/policykit/model"
	"github.com/clearledger/policykit/service/approval"
	amemory "github.com/clearledger/policykit/service/approval/memory"
	"github.com/clearledger/policykit/service/dao"
	pfs "github.com/clearledger/policykit/service/dao/policy/fs"
	pmemory "github.com/clearledger/policykit/service/dao/policy/memory"
	"github.com/clearledger/policykit/service/notification"
	"github.com/clearledger/policykit/service/version"
	"github.com/clearledger/policykit/tracing"
)

// ErrPolicyFrozen is returned when a mutation targets a policy that already
// left draft; rules and metadata are immutable once a policy is submitted.
var ErrPolicyFrozen = errors.New("policy is frozen after submission")

// Service is the façade over the policy store, the rule conflict detector
// and the approval engine.
type Service struct {
	config    *Config
	policyDao dao.Service[string, model.Policy]
	detector  *conflict.Detector
	engine    approval.Service
	notifier  *notification.Service
	collector *metrics.Collector
	versions  *version.Service
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	return s.ensureBaseSetup()
}

func (s *Service) ensureBaseSetup() error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.notifier == nil {
		s.notifier = notification.New()
	}
	if s.policyDao == nil {
		switch s.config.Store.Vendor {
		case "fs":
			store, err := pfs.New(s.config.Store.BasePath)
			if err != nil {
				return err
			}
			s.policyDao = store
		default:
			s.policyDao = pmemory.New()
		}
	}
	if s.detector == nil {
		s.detector = conflict.New()
	}
	if s.collector == nil {
		s.collector = metrics.NewCollector()
	}
	if s.engine == nil {
		s.engine = amemory.New(s.policyDao, amemory.WithNotificationService(s.notifier))
	}
	if s.versions == nil {
		s.versions = version.New()
	}
	return nil
}

// New creates a policykit service with the supplied options; every
// collaborator left unset falls back to its in-memory default.
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}

// CreatePolicy stores a new draft policy. A missing policy or rule id is
// generated, a missing rule name is derived from the rule payload and the
// configured default threshold applies when none is set.
func (s *Service) CreatePolicy(ctx context.Context, policy *model.Policy) (*model.Policy, error) {
	if policy == nil {
		return nil, dao.ErrNilEntity
	}
	ret := policy.Clone()
	if ret.ID == "" {
		ret.ID = idgen.New()
	}
	if ret.Threshold == "" {
		ret.Threshold = s.config.Approval.DefaultThreshold
	}
	s.ensureRuleDefaults(ret)
	now := clock.Now()
	ret.Status = model.StatusDraft
	ret.CreatedAt = now
	ret.ModifiedAt = now
	if err := s.policyDao.Save(ctx, ret); err != nil {
		return nil, fmt.Errorf("failed to create policy %s: %w", ret.ID, err)
	}
	s.recordVersion(ctx, changedBy(ctx), "policy created", nil, ret)
	return ret, nil
}

// UpdatePolicy replaces a draft policy and re-runs conflict detection over
// its rules. Policies past draft are frozen.
func (s *Service) UpdatePolicy(ctx context.Context, policy *model.Policy) (*model.Policy, []conflict.Conflict, error) {
	if policy == nil {
		return nil, nil, dao.ErrNilEntity
	}
	existing, err := s.policyDao.Load(ctx, policy.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load policy %s: %w", policy.ID, err)
	}
	if existing.Status != model.StatusDraft {
		return nil, nil, fmt.Errorf("policy %s is %s: %w", existing.ID, existing.Status, ErrPolicyFrozen)
	}
	ret := policy.Clone()
	ret.Status = existing.Status
	ret.CreatedAt = existing.CreatedAt
	ret.ModifiedAt = clock.Now()
	s.ensureRuleDefaults(ret)
	if err = s.policyDao.Save(ctx, ret); err != nil {
		return nil, nil, fmt.Errorf("failed to update policy %s: %w", ret.ID, err)
	}
	s.recordVersion(ctx, changedBy(ctx), "policy updated", existing, ret)
	return ret, s.DetectConflicts(ctx, ret.Rules), nil
}

// DeletePolicy removes a policy from the store.
func (s *Service) DeletePolicy(ctx context.Context, id string) error {
	return s.policyDao.Delete(ctx, id)
}

// Policy returns a snapshot of the policy with the given id.
func (s *Service) Policy(ctx context.Context, id string) (*model.Policy, error) {
	return s.policyDao.Load(ctx, id)
}

// Policies lists policies, optionally narrowed to the given statuses.
func (s *Service) Policies(ctx context.Context, statuses ...model.PolicyStatus) ([]*model.Policy, error) {
	if len(statuses) == 0 {
		return s.policyDao.List(ctx)
	}
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, string(status))
	}
	return s.policyDao.List(ctx, dao.NewParameter("Status", values...))
}

// AddRule appends a rule to a draft policy and reports the conflicts the
// updated rule set produces. A missing rule id is generated and a missing
// name is derived from the payload.
func (s *Service) AddRule(ctx context.Context, policyID string, rule model.Rule) (*model.Policy, []conflict.Conflict, error) {
	policy, err := s.policyDao.Load(ctx, policyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load policy %s: %w", policyID, err)
	}
	if policy.Status != model.StatusDraft {
		return nil, nil, fmt.Errorf("policy %s is %s: %w", policyID, policy.Status, ErrPolicyFrozen)
	}
	before := policy.Clone()
	policy.Rules = append(policy.Rules, rule)
	s.ensureRuleDefaults(policy)
	policy.ModifiedAt = clock.Now()
	if err = s.policyDao.Save(ctx, policy); err != nil {
		return nil, nil, fmt.Errorf("failed to update policy %s: %w", policyID, err)
	}
	s.recordVersion(ctx, changedBy(ctx), "rule added", before, policy)
	return policy, s.DetectConflicts(ctx, policy.Rules), nil
}

// RemoveRule deletes a rule from a draft policy by rule id.
func (s *Service) RemoveRule(ctx context.Context, policyID, ruleID string) (*model.Policy, error) {
	policy, err := s.policyDao.Load(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy %s: %w", policyID, err)
	}
	if policy.Status != model.StatusDraft {
		return nil, fmt.Errorf("policy %s is %s: %w", policyID, policy.Status, ErrPolicyFrozen)
	}
	before := policy.Clone()
	kept := policy.Rules[:0]
	for _, rule := range policy.Rules {
		if rule.ID != ruleID {
			kept = append(kept, rule)
		}
	}
	policy.Rules = kept
	policy.ModifiedAt = clock.Now()
	if err = s.policyDao.Save(ctx, policy); err != nil {
		return nil, fmt.Errorf("failed to update policy %s: %w", policyID, err)
	}
	s.recordVersion(ctx, changedBy(ctx), "rule removed", before, policy)
	return policy, nil
}

// DetectConflicts runs the configured predicate battery over the rule set
// and records detection metrics.
func (s *Service) DetectConflicts(ctx context.Context, rules []model.Rule) []conflict.Conflict {
	_, span := tracing.StartSpan(ctx, "policy.detectConflicts", "internal")
	started := time.Now()
	conflicts := s.detector.Detect(rules)
	var errCount, warnCount int
	for _, c := range conflicts {
		if c.Severity == conflict.SeverityError {
			errCount++
		} else {
			warnCount++
		}
	}
	s.collector.RecordDetection(time.Since(started).Seconds(), errCount, warnCount)
	tracing.EndSpan(span.WithAttributes(map[string]string{
		"rules":     fmt.Sprintf("%d", len(rules)),
		"conflicts": fmt.Sprintf("%d", len(conflicts)),
	}), nil)
	return conflicts
}

// Submit moves a valid draft policy into the approval workflow and emits a
// single approval request notification. Detected conflicts do not block
// submission; validation failures do.
func (s *Service) Submit(ctx context.Context, policyID string) (*model.Policy, error) {
	policy, err := s.policyDao.Load(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy %s: %w", policyID, err)
	}
	if policy.Status != model.StatusDraft {
		return nil, fmt.Errorf("policy %s is %s: %w", policyID, policy.Status, ErrPolicyFrozen)
	}
	if issues := policy.Validate(); len(issues) > 0 {
		return nil, fmt.Errorf("policy %s is not submittable: %w", policyID, errors.Join(issues...))
	}
	before := policy.Clone()
	if policy.Threshold == "" {
		policy.Threshold = s.config.Approval.DefaultThreshold
	}
	policy.Status = model.StatusPending
	policy.ModifiedAt = clock.Now()
	if err = s.policyDao.Save(ctx, policy); err != nil {
		return nil, fmt.Errorf("failed to submit policy %s: %w", policyID, err)
	}
	s.notifier.Append(ctx, policy.ID, policy.Name, notification.TypeApprovalRequest)
	s.recordVersion(ctx, changedBy(ctx), "submitted for approval", before, policy)
	return policy, nil
}

// RecordDecision applies an approver decision to a policy. When approverID
// is empty the acting approver is taken from the context.
func (s *Service) RecordDecision(ctx context.Context, policyID, approverID string, decision approval.Decision, comment string) (*model.Policy, error) {
	if approverID == "" {
		if acting := actor.FromContext(ctx); acting != nil {
			approverID = acting.ID
		}
	}
	before, beforeErr := s.policyDao.Load(ctx, policyID)
	ctx, span := tracing.StartSpan(ctx, "policy.recordDecision", "internal")
	policy, err := s.engine.RecordDecision(ctx, policyID, approverID, decision, comment)
	s.collector.RecordDecision(string(decision), err)
	tracing.EndSpan(span.WithAttributes(map[string]string{
		"policyId": policyID,
		"decision": string(decision),
	}), err)
	if err == nil && beforeErr == nil {
		s.recordVersion(ctx, approverID, fmt.Sprintf("decision recorded: %s", decision), before, policy)
	}
	return policy, err
}

// Rollback restores a draft policy to the snapshot of an earlier version and
// records the restoration as a new version. Policies past draft are frozen.
func (s *Service) Rollback(ctx context.Context, policyID string, number int) (*model.Policy, error) {
	policy, err := s.policyDao.Load(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy %s: %w", policyID, err)
	}
	if policy.Status != model.StatusDraft {
		return nil, fmt.Errorf("policy %s is %s: %w", policyID, policy.Status, ErrPolicyFrozen)
	}
	v, err := s.versions.Version(ctx, policyID, number)
	if err != nil {
		return nil, err
	}
	restored := v.Snapshot.Clone()
	restored.ID = policy.ID
	restored.Status = model.StatusDraft
	restored.CreatedAt = policy.CreatedAt
	restored.ModifiedAt = clock.Now()
	if err = s.policyDao.Save(ctx, restored); err != nil {
		return nil, fmt.Errorf("failed to roll back policy %s: %w", policyID, err)
	}
	s.recordVersion(ctx, changedBy(ctx), fmt.Sprintf("rolled back to version %d", number), policy, restored)
	return restored, nil
}

// Pending lists policies awaiting decisions, optionally filtered.
func (s *Service) Pending(ctx context.Context, filters ...approval.PendingFilter) ([]*model.Policy, error) {
	return s.engine.ListPending(ctx, filters...)
}

// CountByStatus tallies stored policies per status and refreshes the
// corresponding gauges.
func (s *Service) CountByStatus(ctx context.Context) (map[model.PolicyStatus]int, error) {
	all, err := s.policyDao.List(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[model.PolicyStatus]int{}
	for _, p := range all {
		counts[p.Status]++
	}
	for _, status := range []model.PolicyStatus{model.StatusDraft, model.StatusPending,
		model.StatusInProgress, model.StatusApproved, model.StatusRejected} {
		s.collector.SetPolicyCount(string(status), counts[status])
	}
	return counts, nil
}

// Notifications exposes the shared notification sink.
func (s *Service) Notifications() *notification.Service {
	return s.notifier
}

// Versions exposes the policy change history.
func (s *Service) Versions() *version.Service {
	return s.versions
}

// Metrics exposes the metrics collector.
func (s *Service) Metrics() *metrics.Collector {
	return s.collector
}

// Config returns the effective service configuration.
func (s *Service) Config() *Config {
	return s.config
}

// recordVersion appends to the change history; history is advisory and its
// failure never rolls back the stored policy.
func (s *Service) recordVersion(ctx context.Context, by, summary string, before, after *model.Policy) {
	_, _ = s.versions.Record(ctx, by, summary, before, after)
}

// changedBy resolves who is performing the current mutation from the context;
// anonymous mutations are attributed to "system".
func changedBy(ctx context.Context) string {
	if acting := actor.FromContext(ctx); acting != nil {
		if acting.Name != "" {
			return acting.Name
		}
		return acting.ID
	}
	return "system"
}

func (s *Service) ensureRuleDefaults(policy *model.Policy) {
	for i := range policy.Rules {
		rule := &policy.Rules[i]
		if rule.ID == "" {
			rule.ID = idgen.New()
		}
		if rule.Name == "" {
			rule.Name = rule.DisplayName()
		}
	}
}
