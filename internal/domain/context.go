package domain

import "context"

type identityKey struct{}

// WithIdentity attaches the acting user to ctx
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the acting user stored in ctx, if any
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// ActorUID returns the acting user's uid or an empty string
func ActorUID(ctx context.Context) string {
	id, _ := IdentityFrom(ctx)
	return id.UID
}
