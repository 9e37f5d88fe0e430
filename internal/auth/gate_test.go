package auth

import (
	"context"
	"errors"
	"testing"
)

type stubStore struct {
	users     map[int64]User
	roles     map[int64][]int64
	perms     map[int64][]string
	permCalls int
	permErr   error
}

func (s *stubStore) FindUser(_ context.Context, tenantID, userID int64) (User, error) {
	u, ok := s.users[userID]
	if !ok || u.TenantID != tenantID {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *stubStore) FindUserByEmail(_ context.Context, email string) (User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *stubStore) UserRoles(_ context.Context, _, userID int64) ([]int64, error) {
	return s.roles[userID], nil
}

func (s *stubStore) RolePermissions(_ context.Context, _ int64) (map[int64][]string, error) {
	s.permCalls++
	if s.permErr != nil {
		return nil, s.permErr
	}
	return s.perms, nil
}

func newStubStore() *stubStore {
	return &stubStore{
		users: map[int64]User{
			7: {ID: 7, TenantID: 1, Email: "ops@example.com", Status: UserStatusActive},
			8: {ID: 8, TenantID: 1, Email: "clerk@example.com", Status: UserStatusActive},
		},
		roles: map[int64][]int64{
			7: {100},
		},
		perms: map[int64][]string{
			100: {PermScopeManage, PermAuditRead},
		},
	}
}

func TestGatePrincipal(t *testing.T) {
	gate, err := NewGate(newStubStore())
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	ctx := context.Background()

	principal, err := gate.Principal(ctx, 1, 7)
	if err != nil {
		t.Fatalf("Principal: %v", err)
	}
	if principal.User.ID != 7 {
		t.Fatalf("unexpected user id %d", principal.User.ID)
	}
	if !principal.HasPermission(PermScopeManage) {
		t.Fatal("expected scope.manage to be held")
	}
	if principal.HasPermission(PermCariManage) {
		t.Fatal("expected cari.manage to be absent")
	}
}

func TestGateFailsClosed(t *testing.T) {
	store := newStubStore()
	gate, err := NewGate(store)
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	ctx := context.Background()

	// User with no roles.
	if gate.HasPermission(ctx, 1, 8, PermScopeManage) {
		t.Fatal("user without roles must be denied")
	}
	// Unknown permission code.
	if gate.HasPermission(ctx, 1, 7, "no.such.permission") {
		t.Fatal("unknown code must be denied")
	}
	// Empty code.
	if gate.HasPermission(ctx, 1, 7, "") {
		t.Fatal("empty code must be denied")
	}
	// Unknown user.
	if gate.HasPermission(ctx, 1, 99, PermScopeManage) {
		t.Fatal("unknown user must be denied")
	}
	// Store failure reports false, never panics or leaks authority.
	store.permErr = errors.New("db down")
	gate.Invalidate(1)
	if gate.HasPermission(ctx, 1, 7, PermScopeManage) {
		t.Fatal("lookup failure must be denied")
	}
}

func TestGateCachesPerTenantSnapshot(t *testing.T) {
	store := newStubStore()
	gate, err := NewGate(store)
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	ctx := context.Background()

	gate.HasPermission(ctx, 1, 7, PermScopeManage)
	gate.HasPermission(ctx, 1, 7, PermAuditRead)
	if store.permCalls != 1 {
		t.Fatalf("expected one snapshot load, got %d", store.permCalls)
	}

	gate.Invalidate(1)
	gate.HasPermission(ctx, 1, 7, PermScopeManage)
	if store.permCalls != 2 {
		t.Fatalf("expected reload after invalidation, got %d calls", store.permCalls)
	}
}

func TestPrincipalHasPermission(t *testing.T) {
	principal := NewPrincipal(User{ID: 7, TenantID: 1}, []string{PermAuditRead})
	if !principal.HasPermission(PermAuditRead) {
		t.Fatal("expected permission")
	}
	if principal.HasPermission(PermScopeManage) {
		t.Fatal("unexpected permission")
	}
}
