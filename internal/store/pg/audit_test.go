package pg

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mrcaglayan/my-appv2-sub015/internal/audit"
	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery("insert into audit_logs").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(41), now))

	entry := &audit.Entry{
		TenantID:     1,
		ActorUserID:  7,
		Action:       audit.ActionGroupCreate,
		ResourceType: "group",
		ResourceID:   "3",
		Payload:      map[string]any{"name": "Holding"},
	}
	if err := store.Append(context.Background(), entry); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if entry.ID != 41 {
		t.Fatalf("expected assigned id 41, got %d", entry.ID)
	}
	if !entry.CreatedAt.Equal(now) {
		t.Fatalf("expected created_at backfilled, got %v", entry.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListRendersVisibilityPredicate(t *testing.T) {
	store, mock := newMockStore(t)

	visible := scope.Predicate{Clauses: []scope.Clause{
		{Type: scope.TypeGroup, IDs: []int64{10, 11}},
	}}

	// tenant, then predicate args (type marker + ids), then the action filter.
	countArgs := []driver.Value{int64(1), "GROUP", int64(10), int64(11), audit.ActionScopesReplace}
	mock.ExpectQuery(`select count\(\*\) from audit_logs`).
		WithArgs(countArgs...).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{
		"id", "tenant_id", "actor_user_id", "target_user_id", "action", "resource_type",
		"resource_id", "scope_type", "scope_id", "request_id", "ip_address", "user_agent",
		"payload", "created_at",
	}).AddRow(int64(9), int64(1), int64(7), int64(3), audit.ActionScopesReplace, "scope_grants",
		"3", "GROUP", int64(10), "req-1", "", "", []byte(`{"grants":[]}`), time.Now().UTC())
	mock.ExpectQuery("select id, tenant_id, actor_user_id").
		WithArgs(append(countArgs, 25, 0)...).
		WillReturnRows(rows)

	entries, total, err := store.List(context.Background(), 1, visible, audit.Filter{
		Page:     1,
		PageSize: 25,
		Action:   audit.ActionScopesReplace,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(entries) != 1 {
		t.Fatalf("expected one row, got total=%d len=%d", total, len(entries))
	}
	e := entries[0]
	if e.ScopeType != scope.TypeGroup || e.ScopeID != 10 {
		t.Fatalf("scope columns not mapped: %+v", e)
	}
	if e.Payload == nil {
		t.Fatal("payload not decoded")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
