package auth

import "context"

type ownerKey struct{}

// WithOwner returns a copy of ctx carrying the caller identity.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// OwnerFrom returns the identity stored by WithOwner, or DefaultOwner.
func OwnerFrom(ctx context.Context) string {
	if owner, ok := ctx.Value(ownerKey{}).(string); ok && owner != "" {
		return owner
	}
	return DefaultOwner
}
