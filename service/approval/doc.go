// Package approval implements the multi-approver workflow layer: it records
// individual approver decisions for a policy and derives the policy's
// aggregate status from the configured threshold.
package approval
