// Package model contains the in-memory representation of compliance
// policies: the rule tagged union, the approver workflow members and the
// policy aggregate itself. The structures marshal to JSON and YAML so that
// stores and external tooling can persist them directly.
package model
