package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"tradepost/internal/app/policies"
)

var ErrUnknownToken = errors.New("memory: unknown token")

// IdentityResolver is a dev/test IdentityPort. Tokens of the form
// "user:<id>" resolve to that id; explicitly registered tokens take priority.
type IdentityResolver struct {
	mu     sync.RWMutex
	tokens map[string]policies.Principal
}

func NewIdentityResolver() *IdentityResolver {
	return &IdentityResolver{tokens: make(map[string]policies.Principal)}
}

// Register binds a token to a principal.
func (r *IdentityResolver) Register(token string, principal policies.Principal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = principal
}

func (r *IdentityResolver) Resolve(ctx context.Context, token string) (policies.Principal, error) {
	r.mu.RLock()
	principal, ok := r.tokens[token]
	r.mu.RUnlock()
	if ok {
		return principal, nil
	}
	if id, found := strings.CutPrefix(token, "user:"); found && id != "" {
		return policies.Principal{ID: id, DisplayName: id}, nil
	}
	return policies.Principal{}, ErrUnknownToken
}
