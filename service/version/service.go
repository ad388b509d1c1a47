// Package version keeps an append-only change history per policy: one entry
// per mutation with who changed it, field-level old/new values and a full
// snapshot so that earlier revisions can be compared or restored.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/clearledger/policykit/internal/clock"
	"github.com/clearledger/policykit/internal/idgen"
	"github.com/clearledger/policykit/model"
	"github.com/clearledger/policykit/service/dao"
	"github.com/clearledger/policykit/service/dao/store"
)

// ErrVersionNotFound is returned when a requested version number does not
// exist for the policy.
var ErrVersionNotFound = errors.New("version: not found")

// Change is one field-level difference between two consecutive versions.
type Change struct {
	Field string `json:"field"`
	Old   string `json:"oldValue,omitempty"`
	New   string `json:"newValue,omitempty"`
}

// Version is one entry of a policy's change history. Numbers start at 1 and
// grow by one per recorded mutation.
type Version struct {
	ID        string        `json:"id"`
	PolicyID  string        `json:"policyId"`
	Number    int           `json:"number"`
	ChangedBy string        `json:"changedBy"`
	Summary   string        `json:"summary"`
	Timestamp time.Time     `json:"timestamp"`
	Changes   []Change      `json:"changes,omitempty"`
	Snapshot  *model.Policy `json:"snapshot"`
}

// History is the ordered version list of a single policy.
type History struct {
	PolicyID string     `json:"policyId"`
	Versions []*Version `json:"versions"`
}

// Service records and serves policy version histories.
type Service struct {
	histories *store.MemoryStore[string, History]

	// serialises read-modify-write of a history so version numbers stay
	// dense under concurrent mutations
	mu sync.Mutex
}

// New creates an empty version history service.
func New() *Service {
	return &Service{
		histories: store.NewMemoryStore[string, History](
			func(h *History) string { return h.PolicyID }),
	}
}

// Record appends a version entry for the transition from before to after.
// A nil before marks the initial version and carries no field changes.
func (s *Service) Record(ctx context.Context, changedBy, summary string, before, after *model.Policy) (*Version, error) {
	if after == nil {
		return nil, dao.ErrNilEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.histories.Load(ctx, after.ID)
	if errors.Is(err, dao.ErrNotFound) {
		history = &History{PolicyID: after.ID}
	} else if err != nil {
		return nil, err
	}

	v := &Version{
		ID:        idgen.New(),
		PolicyID:  after.ID,
		Number:    len(history.Versions) + 1,
		ChangedBy: changedBy,
		Summary:   summary,
		Timestamp: clock.Now(),
		Changes:   fieldChanges(before, after),
		Snapshot:  after.Clone(),
	}
	history.Versions = append(history.Versions, v)
	if err = s.histories.Save(ctx, history); err != nil {
		return nil, err
	}
	return v, nil
}

// List returns the version history of a policy in recording order; a policy
// without history yields an empty slice.
func (s *Service) List(ctx context.Context, policyID string) ([]*Version, error) {
	history, err := s.histories.Load(ctx, policyID)
	if errors.Is(err, dao.ErrNotFound) {
		return []*Version{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]*Version, len(history.Versions))
	copy(out, history.Versions)
	return out, nil
}

// Version returns a single version entry by number.
func (s *Service) Version(ctx context.Context, policyID string, number int) (*Version, error) {
	versions, err := s.List(ctx, policyID)
	if err != nil {
		return nil, err
	}
	for _, v := range versions {
		if v.Number == number {
			return v, nil
		}
	}
	return nil, fmt.Errorf("policy %s version %d: %w", policyID, number, ErrVersionNotFound)
}

// Diff renders a unified diff between the snapshots of two versions of the
// same policy.
func (s *Service) Diff(ctx context.Context, policyID string, from, to int) (string, error) {
	fromVersion, err := s.Version(ctx, policyID, from)
	if err != nil {
		return "", err
	}
	toVersion, err := s.Version(ctx, policyID, to)
	if err != nil {
		return "", err
	}
	fromText, err := json.MarshalIndent(fromVersion.Snapshot, "", "  ")
	if err != nil {
		return "", err
	}
	toText, err := json.MarshalIndent(toVersion.Snapshot, "", "  ")
	if err != nil {
		return "", err
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(fromText)),
		B:        difflib.SplitLines(string(toText)),
		FromFile: fmt.Sprintf("version %d", from),
		ToFile:   fmt.Sprintf("version %d", to),
		Context:  3,
	})
}

// fieldChanges compares the reviewable fields of two policy revisions.
func fieldChanges(before, after *model.Policy) []Change {
	if before == nil || after == nil {
		return nil
	}
	var changes []Change
	add := func(field, oldValue, newValue string) {
		if oldValue != newValue {
			changes = append(changes, Change{Field: field, Old: oldValue, New: newValue})
		}
	}
	add("name", before.Name, after.Name)
	add("description", before.Description, after.Description)
	add("type", before.Type, after.Type)
	add("jurisdiction", before.Jurisdiction, after.Jurisdiction)
	add("effectiveDate", formatDate(&before.EffectiveDate), formatDate(&after.EffectiveDate))
	add("expirationDate", formatDate(before.ExpirationDate), formatDate(after.ExpirationDate))
	add("threshold", string(before.Threshold), string(after.Threshold))
	add("status", string(before.Status), string(after.Status))
	add("reviewFrequency", before.ReviewFrequency, after.ReviewFrequency)
	add("isActive", fmt.Sprintf("%t", before.IsActive), fmt.Sprintf("%t", after.IsActive))
	add("tags", strings.Join(before.Tags, ", "), strings.Join(after.Tags, ", "))
	add("rules", ruleSummary(before.Rules), ruleSummary(after.Rules))
	add("approvers", approverSummary(before.Approvers), approverSummary(after.Approvers))
	return changes
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func ruleSummary(rules []model.Rule) string {
	names := make([]string, 0, len(rules))
	for i := range rules {
		names = append(names, rules[i].DisplayName())
	}
	return strings.Join(names, "; ")
}

func approverSummary(approvers []model.Approver) string {
	parts := make([]string, 0, len(approvers))
	for i := range approvers {
		a := &approvers[i]
		status := a.Status
		if a.Pending() {
			status = model.DecisionPending
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", a.Name, status))
	}
	return strings.Join(parts, "; ")
}
