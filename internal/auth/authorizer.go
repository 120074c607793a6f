package auth

import "context"

// Authorizer answers capability checks from the identity in the context.
// Capabilities in a token apply to every activity the token is presented to.
type Authorizer struct{}

func (Authorizer) HasCapability(ctx context.Context, capability string, _ int64) bool {
	id, ok := IdentityFromContext(ctx)
	return ok && id.Has(capability)
}
