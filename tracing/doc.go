// Package tracing integrates observability back-ends with the policy core.
// Instrumentation lives in a separate package so that applications which do
// not require tracing can exclude it from their build.
package tracing
