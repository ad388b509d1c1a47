package model

import (
	"fmt"
	"time"
)

// Threshold is the approval quorum mode of a policy.
type Threshold string

const (
	// ThresholdAll requires every approver to approve.
	ThresholdAll Threshold = "all"
	// ThresholdMajority requires ceil(n/2) approvals.
	ThresholdMajority Threshold = "majority"
	// ThresholdAny requires a single approval.
	ThresholdAny Threshold = "any"
)

// PolicyStatus is the aggregate approval state of a policy.
type PolicyStatus string

const (
	// StatusDraft marks a policy still being edited; it has not entered the
	// approval workflow yet.
	StatusDraft PolicyStatus = "draft"
	// StatusPending marks a submitted policy awaiting its first decision.
	StatusPending PolicyStatus = "pending"
	// StatusInProgress marks a policy with at least one approval but the
	// threshold not yet met.
	StatusInProgress PolicyStatus = "in_progress"
	// StatusApproved and StatusRejected are terminal.
	StatusApproved PolicyStatus = "approved"
	StatusRejected PolicyStatus = "rejected"
)

// Terminal reports whether the status admits no further decisions.
func (s PolicyStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// DecisionStatus is the state of an individual approver's decision.
type DecisionStatus string

const (
	DecisionPending  DecisionStatus = "pending"
	DecisionApproved DecisionStatus = "approved"
	DecisionRejected DecisionStatus = "rejected"
)

// Approver is a member of a policy's approval workflow together with the
// decision recorded for them. Decision fields are mutated in place as
// decisions arrive; identity fields never change.
type Approver struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Email     string `json:"email,omitempty" yaml:"email,omitempty"`
	Role      string `json:"role,omitempty" yaml:"role,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty" yaml:"avatarUrl,omitempty"`

	// Status defaults to pending until a decision is recorded
	Status    DecisionStatus `json:"status,omitempty" yaml:"status,omitempty"`
	Comment   string         `json:"comment,omitempty" yaml:"comment,omitempty"`
	Timestamp *time.Time     `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// Pending reports whether the approver has not decided yet. A zero Status is
// treated as pending so that freshly selected approvers need no explicit
// initialisation.
func (a *Approver) Pending() bool {
	return a.Status == "" || a.Status == DecisionPending
}

// Policy is a named bundle of compliance rules routed through a
// multi-approver workflow before activation.
type Policy struct {
	// ID uniquely identifies the policy
	ID string `json:"id" yaml:"id"`

	// Name is the unique display name of the policy
	Name string `json:"name" yaml:"name"`

	// Description provides a human-readable description
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Type is the policy category, e.g. transfer_limit or kyc_verification
	Type string `json:"type" yaml:"type"`

	// Jurisdiction scopes the policy geographically, e.g. global, us, eu
	Jurisdiction string `json:"jurisdiction" yaml:"jurisdiction"`

	EffectiveDate  time.Time  `json:"effectiveDate" yaml:"effectiveDate"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty" yaml:"expirationDate,omitempty"`

	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Rules holds the ordered compliance rules owned by this policy
	Rules []Rule `json:"rules,omitempty" yaml:"rules,omitempty"`

	// Approvers holds the ordered approval workflow members
	Approvers []Approver `json:"approvers,omitempty" yaml:"approvers,omitempty"`

	// Threshold selects the approval quorum mode
	Threshold Threshold `json:"threshold" yaml:"threshold"`

	// Status is derived from approver decisions and Threshold, except for
	// the rejection short-circuit
	Status PolicyStatus `json:"status" yaml:"status"`

	ReviewFrequency string `json:"reviewFrequency,omitempty" yaml:"reviewFrequency,omitempty"`
	IsActive        bool   `json:"isActive,omitempty" yaml:"isActive,omitempty"`

	CreatedAt  time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	ModifiedAt time.Time `json:"modifiedAt,omitempty" yaml:"modifiedAt,omitempty"`
}

// Approver returns the approver with the given id or nil. The returned
// pointer aliases the policy's approver list.
func (p *Policy) Approver(id string) *Approver {
	for i := range p.Approvers {
		if p.Approvers[i].ID == id {
			return &p.Approvers[i]
		}
	}
	return nil
}

// ApprovedCount returns the number of recorded approvals.
func (p *Policy) ApprovedCount() int {
	count := 0
	for i := range p.Approvers {
		if p.Approvers[i].Status == DecisionApproved {
			count++
		}
	}
	return count
}

// RejectedCount returns the number of recorded rejections.
func (p *Policy) RejectedCount() int {
	count := 0
	for i := range p.Approvers {
		if p.Approvers[i].Status == DecisionRejected {
			count++
		}
	}
	return count
}

// Clone returns a deep copy of the policy so that callers can mutate the
// result without affecting the original snapshot.
func (p *Policy) Clone() *Policy {
	ret := *p
	ret.Tags = append([]string(nil), p.Tags...)
	if p.ExpirationDate != nil {
		d := *p.ExpirationDate
		ret.ExpirationDate = &d
	}
	if p.Rules != nil {
		ret.Rules = make([]Rule, len(p.Rules))
		for i := range p.Rules {
			ret.Rules[i] = p.Rules[i].Clone()
		}
	}
	if p.Approvers != nil {
		ret.Approvers = make([]Approver, len(p.Approvers))
		for i := range p.Approvers {
			a := p.Approvers[i]
			if a.Timestamp != nil {
				ts := *a.Timestamp
				a.Timestamp = &ts
			}
			ret.Approvers[i] = a
		}
	}
	return &ret
}

// Validate performs a best-effort structural validation of the policy. The
// returned slice is empty when the policy is sound; otherwise it contains
// human-readable error descriptions. Rule payload validation stays with the
// rule editors; only policy-level requirements are checked here.
func (p *Policy) Validate() []error {
	var issues []error
	if p.Name == "" {
		issues = append(issues, fmt.Errorf("policy name is required"))
	}
	if p.Description == "" {
		issues = append(issues, fmt.Errorf("policy description is required"))
	}
	if p.Type == "" {
		issues = append(issues, fmt.Errorf("policy type is required"))
	}
	if p.Jurisdiction == "" {
		issues = append(issues, fmt.Errorf("jurisdiction is required"))
	}
	if p.EffectiveDate.IsZero() {
		issues = append(issues, fmt.Errorf("effective date is required"))
	}
	if len(p.Rules) == 0 {
		issues = append(issues, fmt.Errorf("at least one rule is required"))
	}
	if len(p.Approvers) == 0 {
		issues = append(issues, fmt.Errorf("at least one approver is required"))
	}
	switch p.Threshold {
	case ThresholdAll, ThresholdMajority, ThresholdAny, "":
	default:
		issues = append(issues, fmt.Errorf("unknown threshold: %s", p.Threshold))
	}
	return issues
}
