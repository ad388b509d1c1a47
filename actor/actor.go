// Package actor carries the acting approver through context so that
// decision entry points can resolve "who is deciding" without threading an
// identity parameter through every layer. It is deliberately decoupled from
// the rest of the module - callers that never embed an actor keep the
// explicit approver-id behaviour.
package actor

import (
	"context"

	"github.com/clearledger/policykit/model"
)

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithActor embeds the acting approver in ctx.
func WithActor(ctx context.Context, a *model.Approver) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, a)
}

// FromContext extracts the acting approver or nil.
func FromContext(ctx context.Context) *model.Approver {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*model.Approver); ok {
		return v
	}
	return nil
}

// CanDecide reports whether the given approver is currently allowed to act
// on the policy: listed, still pending and the policy not yet terminal.
func CanDecide(p *model.Policy, a *model.Approver) bool {
	if p == nil || a == nil || p.Status.Terminal() {
		return false
	}
	member := p.Approver(a.ID)
	return member != nil && member.Pending()
}
