// Package requestctx carries per-call identity resolved by the external
// caller-identity collaborator. The governance core never authenticates;
// it only reads the verified party identifier stored here.
package requestctx

import "context"

// partyIDContextKey is the context key for the authenticated party identity.
type partyIDContextKey struct{}

// WithPartyID stores a calling party identifier in context.
func WithPartyID(ctx context.Context, partyID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, partyIDContextKey{}, partyID)
}

// PartyIDFromContext returns the calling party identifier stored in context.
func PartyIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(partyIDContextKey{}).(string)
	return value
}
