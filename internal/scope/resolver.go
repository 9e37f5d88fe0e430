package scope

import (
	"context"
	"errors"
)

// Resolver builds a request-scoped Context from a user's persisted grants.
// Resolve is a pure function of the current grant set: two calls with no
// intervening writes yield identical contexts. The resolver performs no
// caching; each request resolves fresh.
type Resolver struct {
	store GrantStore
}

func NewResolver(store GrantStore) (*Resolver, error) {
	if store == nil {
		return nil, errors.New("scope: grant store is required")
	}
	return &Resolver{store: store}, nil
}

// Resolve loads and folds the user's grants into an authorization context.
func (r *Resolver) Resolve(ctx context.Context, tenantID, userID int64) (Context, error) {
	if tenantID <= 0 || userID <= 0 {
		return Context{}, ErrInvalidInput
	}
	grants, err := r.store.Grants(ctx, tenantID, userID)
	if err != nil {
		return Context{}, err
	}
	return Fold(grants), nil
}
