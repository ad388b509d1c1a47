// Package policykit provides an embeddable compliance policy core for
// digital-asset platforms.
//
// A policy bundles transfer rules with an approval workflow and comes with
// pluggable service layers such as:
//
//   - conflict  – pairwise rule conflict detection
//   - approval  – threshold based human approval decisions
//   - notification – idempotent approval lifecycle notifications
//   - version   – per-policy change history with diff and rollback
//   - dao       – in-memory and file-system policy stores
//
// Policykit is designed to be embedded in host applications.  End-users
// typically interact with the engine via the high-level Service façade
// exposed by the root package:
//
//	srv, _ := policykit.New()
//	p, _ := srv.CreatePolicy(ctx, draft)
//	conflicts := srv.DetectConflicts(ctx, p.Rules)
//	p, _ = srv.Submit(ctx, p.ID)
//	p, _ = srv.RecordDecision(ctx, p.ID, approverID, approval.Approved, "ok")
//
// For more details see the individual sub-packages.
package policykit
