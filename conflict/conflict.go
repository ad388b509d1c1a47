package conflict

// Severity grades a detected conflict.
type Severity string

const (
	// SeverityError marks a combination of rules that cannot both be
	// enforced as written.
	SeverityError Severity = "error"
	// SeverityWarning marks a redundancy or an ambiguity worth reviewing.
	SeverityWarning Severity = "warning"
)

// Conflict is a derived report of a semantic tension between two rules of
// the same policy. Conflicts are recomputed on demand and never persisted.
type Conflict struct {
	// RuleA and RuleB identify the conflicting pair; RuleA always precedes
	// RuleB in the scanned rule sequence.
	RuleA string `json:"ruleAId"`
	RuleB string `json:"ruleBId"`

	Severity Severity `json:"severity"`

	// Reason names the rules and the concrete values that triggered the
	// conflict.
	Reason string `json:"reason"`
}
