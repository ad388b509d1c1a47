// Package conflict detects semantic tensions between the compliance rules of
// a single policy. Detection is a pure, re-entrant computation over the rule
// list; it is re-run whenever the list changes and its results are never
// stored.
package conflict
