package auth

import "context"

type identityContextKey struct{}

// ContextWithIdentity attaches the authenticated identity to the context.
func ContextWithIdentity(ctx context.Context, identity AuthenticatedIdentity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, &identity)
}

// IdentityFromContext extracts the authenticated identity from the context.
func IdentityFromContext(ctx context.Context) (AuthenticatedIdentity, bool) {
	if ctx == nil {
		return AuthenticatedIdentity{}, false
	}
	v, ok := ctx.Value(identityContextKey{}).(*AuthenticatedIdentity)
	if !ok || v == nil {
		return AuthenticatedIdentity{}, false
	}
	return *v, true
}

// HasAuthority checks whether the context identity holds authority.
func HasAuthority(ctx context.Context, authority string) bool {
	identity, ok := IdentityFromContext(ctx)
	if !ok || !identity.Authenticated {
		return false
	}
	return identity.HasAuthority(authority)
}
