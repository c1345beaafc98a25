package policies

import "context"

// Principal is the verified caller identity attached to every request.
// Authentication happens outside this service; the core only consumes the
// resolved id.
type Principal struct {
	ID          string
	DisplayName string
}

// IdentityPort resolves a bearer token into a verified principal.
type IdentityPort interface {
	Resolve(ctx context.Context, token string) (Principal, error)
}
