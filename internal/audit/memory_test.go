package audit

import (
	"context"
	"testing"
	"time"

	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

func TestInMemoryOrderStableOnEqualTimestamps(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := store.Append(ctx, &Entry{TenantID: 1, ActorUserID: 7, Action: "x", CreatedAt: at})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	items, total, err := store.List(ctx, 1, scope.Predicate{All: true}, Filter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	// Equal created_at resolves by id desc: most recent insert first.
	for i, e := range items {
		if want := int64(5 - i); e.ID != want {
			t.Fatalf("position %d: expected id %d, got %d", i, want, e.ID)
		}
	}
}

func TestInMemoryVisibilityAndTenantIsolation(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()
	entries := []Entry{
		{TenantID: 1, ActorUserID: 7, Action: "a", ScopeType: scope.TypeGroup, ScopeID: 10},
		{TenantID: 1, ActorUserID: 7, Action: "b", ScopeType: scope.TypeGroup, ScopeID: 11},
		{TenantID: 1, ActorUserID: 7, Action: "c"}, // unscoped
		{TenantID: 2, ActorUserID: 9, Action: "d", ScopeType: scope.TypeGroup, ScopeID: 10},
	}
	for i := range entries {
		if err := store.Append(ctx, &entries[i]); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	visible := scope.Predicate{Clauses: []scope.Clause{{Type: scope.TypeGroup, IDs: []int64{10}}}}
	items, total, err := store.List(ctx, 1, visible, Filter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 visible entries, got %d", total)
	}
	for _, e := range items {
		if e.TenantID != 1 {
			t.Fatalf("cross-tenant row leaked: %+v", e)
		}
		if e.Action == "b" {
			t.Fatal("entry outside visibility leaked")
		}
	}
}

func TestInMemoryFilters(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seed := []Entry{
		{TenantID: 1, ActorUserID: 7, TargetUserID: 3, Action: ActionScopesReplace, ResourceType: "user", CreatedAt: base},
		{TenantID: 1, ActorUserID: 8, Action: ActionGroupCreate, ResourceType: "group", CreatedAt: base.Add(time.Hour)},
	}
	for i := range seed {
		if err := store.Append(ctx, &seed[i]); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	all := scope.Predicate{All: true}

	_, total, _ := store.List(ctx, 1, all, Filter{Page: 1, PageSize: 10, ActorUserID: 7})
	if total != 1 {
		t.Fatalf("actor filter: expected 1, got %d", total)
	}
	_, total, _ = store.List(ctx, 1, all, Filter{Page: 1, PageSize: 10, Action: ActionGroupCreate})
	if total != 1 {
		t.Fatalf("action filter: expected 1, got %d", total)
	}
	_, total, _ = store.List(ctx, 1, all, Filter{Page: 1, PageSize: 10, CreatedFrom: base.Add(30 * time.Minute)})
	if total != 1 {
		t.Fatalf("time filter: expected 1, got %d", total)
	}
	_, total, _ = store.List(ctx, 1, all, Filter{Page: 1, PageSize: 10, TargetUserID: 3})
	if total != 1 {
		t.Fatalf("target filter: expected 1, got %d", total)
	}
}
