package approval

import (
	"errors"
)

// Decision is the verdict an approver records for a policy.
type Decision string

const (
	Approved Decision = "approved"
	Rejected Decision = "rejected"
)

// Valid reports whether the decision is one of the recognised verdicts.
func (d Decision) Valid() bool {
	return d == Approved || d == Rejected
}

var (
	// ErrInvalidActor is returned when a decision arrives from an approver
	// who is not on the policy's list or has already decided.
	ErrInvalidActor = errors.New("approval: not an eligible pending approver")

	// ErrPolicyClosed is returned when a decision arrives for a policy that
	// already reached a terminal status.
	ErrPolicyClosed = errors.New("approval: policy already finalised")

	// ErrPolicyNotSubmitted is returned when a decision arrives for a policy
	// that has not entered the approval workflow yet.
	ErrPolicyNotSubmitted = errors.New("approval: policy not submitted")

	// ErrInvalidDecision is returned for a verdict other than approved or
	// rejected.
	ErrInvalidDecision = errors.New("approval: invalid decision")
)
