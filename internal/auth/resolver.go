package auth

import (
	"context"
	"strings"
)

// Resolver maps partial login credentials to at most one active account.
type Resolver struct {
	store Store
}

// NewResolver creates a resolver backed by the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve looks up an active account using two strategies in strict order:
//
//  1. If identifier is non-blank, look up by id. The presence of an
//     identifier short-circuits resolution: a miss returns nil without
//     attempting strategy 2, even when a name pair is also supplied.
//  2. Otherwise, if both names are non-blank, look up by trimmed,
//     case-folded given/family name and return the first match in
//     storage order.
//
// Returns (nil, nil) when no account matches. Read-only; the caller is
// responsible for validating that at least one strategy's inputs are
// present.
func (r *Resolver) Resolve(ctx context.Context, identifier, givenName, familyName string) (*Account, error) {
	if id := strings.TrimSpace(identifier); id != "" {
		return r.store.FindAccountByID(ctx, id)
	}

	given := strings.TrimSpace(givenName)
	family := strings.TrimSpace(familyName)
	if given != "" && family != "" {
		return r.store.FindAccountByName(ctx, given, family)
	}

	return nil, nil
}
