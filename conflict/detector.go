package conflict

import (
	"github.com/clearledger/policykit/model"
)

// Predicate inspects a single unordered pair of rules and returns any
// conflicts between them. Implementations must be pure, tolerate either
// argument order and silently return nil when the data they need is missing
// or malformed - rule-shape validation belongs to the rule editors.
type Predicate func(a, b *model.Rule) []Conflict

// Detector runs a battery of pairwise predicates over a policy's rule list.
// The zero battery is the default one; extra predicates can be appended so
// that deployments can treat the exact conflict policy as configuration
// rather than fixed behaviour.
type Detector struct {
	predicates []Predicate
}

// Option customises a Detector.
type Option func(*Detector)

// WithPredicates appends extra predicates to the default battery.
func WithPredicates(predicates ...Predicate) Option {
	return func(d *Detector) {
		d.predicates = append(d.predicates, predicates...)
	}
}

// WithBattery replaces the default battery entirely.
func WithBattery(predicates ...Predicate) Option {
	return func(d *Detector) {
		d.predicates = predicates
	}
}

// New returns a Detector with the default predicate battery.
func New(options ...Option) *Detector {
	ret := &Detector{predicates: defaultBattery()}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Detect pairwise-compares the supplied rules and reports all conflicts in
// discovery order: outer index ascending, inner index ascending, outer
// before inner. It is a pure function of its argument, never mutates the
// input and never fails; pairs a predicate cannot evaluate are skipped.
// Fewer than two rules always yields an empty result.
func (d *Detector) Detect(rules []model.Rule) []Conflict {
	conflicts := []Conflict{}
	if len(rules) < 2 {
		return conflicts
	}
	for i := 0; i < len(rules); i++ {
		for j := i + 1; j < len(rules); j++ {
			a, b := &rules[i], &rules[j]
			// every predicate runs - a pair may yield more than one conflict
			for _, predicate := range d.predicates {
				for _, c := range predicate(a, b) {
					c.RuleA, c.RuleB = a.ID, b.ID
					conflicts = append(conflicts, c)
				}
			}
		}
	}
	return conflicts
}

var defaultDetector = New()

// Detect runs the default detector, see Detector.Detect.
func Detect(rules []model.Rule) []Conflict {
	return defaultDetector.Detect(rules)
}
