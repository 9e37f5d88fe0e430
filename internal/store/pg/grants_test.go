package pg

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mrcaglayan/my-appv2-sub015/internal/audit"
	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db), mock
}

func TestReplaceGrantsCommitsWithAuditRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select 1 from users").
		WithArgs(int64(1), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectExec("delete from scope_grants").
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("insert into scope_grants").
		WithArgs(int64(1), int64(7), "GROUP", int64(10), "ALLOW").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("insert into scope_grants").
		WithArgs(int64(1), int64(7), "LEGAL_ENTITY", int64(30), "DENY").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("insert into audit_logs").
		WithArgs(int64(1), int64(99), int64(7), audit.ActionScopesReplace, "scope_grants", "7", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ctx := audit.WithActor(context.Background(), 99)
	got, err := store.ReplaceGrants(ctx, 1, 7, []scope.GrantInput{
		{Type: scope.TypeGroup, ScopeID: 10, Effect: scope.EffectAllow},
		{Type: scope.TypeLegalEntity, ScopeID: 30, Effect: scope.EffectDeny},
	})
	if err != nil {
		t.Fatalf("ReplaceGrants: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 grants back, got %d", len(got))
	}
	if got[0].Type != scope.TypeGroup || got[0].ScopeID != 10 || got[0].Effect != scope.EffectAllow {
		t.Fatalf("unexpected first grant: %+v", got[0])
	}
	if got[1].UserID != 7 || got[1].TenantID != 1 {
		t.Fatalf("grant not stamped with tenant/user: %+v", got[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReplaceGrantsRollsBackWhenAuditAppendFails(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select 1 from users").
		WithArgs(int64(1), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectExec("delete from scope_grants").
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("insert into scope_grants").
		WithArgs(int64(1), int64(7), "GROUP", int64(10), "ALLOW").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("insert into audit_logs").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := store.ReplaceGrants(context.Background(), 1, 7, []scope.GrantInput{
		{Type: scope.TypeGroup, ScopeID: 10, Effect: scope.EffectAllow},
	})
	if err == nil {
		t.Fatal("expected error when audit append fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReplaceGrantsUnknownUser(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select 1 from users").
		WithArgs(int64(1), int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectRollback()

	_, err := store.ReplaceGrants(context.Background(), 1, 404, nil)
	if !errors.Is(err, scope.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestClearingGrantsStillAudits(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select 1 from users").
		WithArgs(int64(1), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectExec("delete from scope_grants").
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("insert into audit_logs").
		WithArgs(int64(1), int64(0), int64(7), audit.ActionScopesReplace, "scope_grants", "7", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	got, err := store.ReplaceGrants(context.Background(), 1, 7, nil)
	if err != nil {
		t.Fatalf("ReplaceGrants: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty set, got %d grants", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGrantsLoadsCurrentSet(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select scope_type, scope_id, effect").
		WithArgs(int64(1), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"scope_type", "scope_id", "effect"}).
			AddRow("GROUP", int64(10), "ALLOW").
			AddRow("OPERATING_UNIT", int64(55), "DENY"))

	grants, err := store.Grants(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("Grants: %v", err)
	}
	if len(grants) != 2 {
		t.Fatalf("expected 2 grants, got %d", len(grants))
	}
	if grants[1].Type != scope.TypeOperatingUnit || grants[1].Effect != scope.EffectDeny {
		t.Fatalf("unexpected grant: %+v", grants[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReplaceGrantsRejectsMalformedSet(t *testing.T) {
	store, mock := newMockStore(t)

	// No expectations: a malformed set must be rejected before any SQL runs.
	_, err := store.ReplaceGrants(context.Background(), 1, 7, []scope.GrantInput{
		{Type: "PLANET", ScopeID: 10, Effect: scope.EffectAllow},
	})
	if !errors.Is(err, scope.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	_, err = store.ReplaceGrants(context.Background(), 1, 7, []scope.GrantInput{
		{Type: scope.TypeGroup, ScopeID: 0, Effect: scope.EffectAllow},
	})
	if !errors.Is(err, scope.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for non-positive id, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReplaceGrantsMapsCheckViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("select 1 from users").
		WithArgs(int64(1), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectExec("delete from scope_grants").
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("insert into scope_grants").
		WithArgs(int64(1), int64(7), "GROUP", int64(10), "ALLOW").
		WillReturnError(&pgconn.PgError{Code: pgErrCheckViolation})
	mock.ExpectRollback()

	_, err := store.ReplaceGrants(context.Background(), 1, 7, []scope.GrantInput{
		{Type: scope.TypeGroup, ScopeID: 10, Effect: scope.EffectAllow},
	})
	if !errors.Is(err, scope.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepeatedReplaceSameSetAuditsEachTime(t *testing.T) {
	store, mock := newMockStore(t)

	set := []scope.GrantInput{
		{Type: scope.TypeGroup, ScopeID: 10, Effect: scope.EffectAllow},
	}

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery("select 1 from users").
			WithArgs(int64(1), int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
		mock.ExpectExec("delete from scope_grants").
			WithArgs(int64(1), int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("insert into scope_grants").
			WithArgs(int64(1), int64(7), "GROUP", int64(10), "ALLOW").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("insert into audit_logs").
			WithArgs(int64(1), int64(0), int64(7), audit.ActionScopesReplace, "scope_grants", "7", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()
	}

	first, err := store.ReplaceGrants(context.Background(), 1, 7, set)
	if err != nil {
		t.Fatalf("first replace: %v", err)
	}
	second, err := store.ReplaceGrants(context.Background(), 1, 7, set)
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}

	// Both replaces audit independently and fold to the same context.
	if !reflect.DeepEqual(scope.Fold(first), scope.Fold(second)) {
		t.Fatalf("contexts diverged: %+v vs %+v", scope.Fold(first), scope.Fold(second))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
