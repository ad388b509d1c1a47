// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// Callers should not rely on its exact behaviour and treat identifiers as
// opaque strings.
package idgen
