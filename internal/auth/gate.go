package auth

import (
	"context"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultGateCacheSize = 256

// Gate is the role-based permission check that runs in front of all scope
// logic. The tenant's role -> permission mapping is loaded as one snapshot and
// cached per tenant; the cache is invalidated whenever role permissions
// change. User role memberships are read per request.
type Gate struct {
	store Store
	cache *lru.Cache[int64, map[int64][]string]
}

func NewGate(store Store) (*Gate, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	cache, err := lru.New[int64, map[int64][]string](defaultGateCacheSize)
	if err != nil {
		return nil, err
	}
	return &Gate{store: store, cache: cache}, nil
}

// Principal loads the user and resolves their effective permission set.
func (g *Gate) Principal(ctx context.Context, tenantID, userID int64) (Principal, error) {
	user, err := g.store.FindUser(ctx, tenantID, userID)
	if err != nil {
		return Principal{}, err
	}
	roleIDs, err := g.store.UserRoles(ctx, tenantID, userID)
	if err != nil {
		return Principal{}, err
	}
	snapshot, err := g.tenantPermissions(ctx, tenantID)
	if err != nil {
		return Principal{}, err
	}
	var codes []string
	for _, roleID := range roleIDs {
		codes = append(codes, snapshot[roleID]...)
	}
	return NewPrincipal(user, codes), nil
}

// HasPermission reports whether the user holds the named capability. It fails
// closed: unknown codes, users without roles, and lookup failures all report
// false.
func (g *Gate) HasPermission(ctx context.Context, tenantID, userID int64, code string) bool {
	if code == "" {
		return false
	}
	principal, err := g.Principal(ctx, tenantID, userID)
	if err != nil {
		return false
	}
	return principal.HasPermission(code)
}

// Invalidate drops the cached permission snapshot for a tenant. Called after
// any write to the tenant's role -> permission mapping.
func (g *Gate) Invalidate(tenantID int64) {
	g.cache.Remove(tenantID)
}

func (g *Gate) tenantPermissions(ctx context.Context, tenantID int64) (map[int64][]string, error) {
	if snapshot, ok := g.cache.Get(tenantID); ok {
		return snapshot, nil
	}
	snapshot, err := g.store.RolePermissions(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	g.cache.Add(tenantID, snapshot)
	return snapshot, nil
}
