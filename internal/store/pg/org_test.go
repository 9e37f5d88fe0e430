package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mrcaglayan/my-appv2-sub015/internal/org"
	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

func TestListLegalEntitiesRendersColumnPredicate(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	// Group and country sets each translate into their own column clause.
	sc := scope.NewContext()
	sc.Groups[10] = struct{}{}
	sc.Countries[5] = struct{}{}

	mock.ExpectQuery(`group_id in \(\$2\) or country_id in \(\$3\)`).
		WithArgs(int64(1), int64(10), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "tenant_id", "group_id", "country_id", "name", "tax_number", "created_at", "updated_at",
		}).AddRow(int64(3), int64(1), int64(10), int64(5), "Acme TR", "123", now, now))

	items, err := store.ListLegalEntities(context.Background(), 1, scope.Visibility(sc))
	if err != nil {
		t.Fatalf("list legal entities: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Acme TR" {
		t.Fatalf("unexpected result: %+v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListGroupsEmptyContextMatchesNothing(t *testing.T) {
	store, mock := newMockStore(t)

	// An empty context renders an accept-nothing predicate, no extra args.
	mock.ExpectQuery(`where tenant_id = \$1 and false`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "tenant_id", "parent_group_id", "name", "created_at", "updated_at",
		}))

	items, err := store.ListGroups(context.Background(), 1, scope.Visibility(scope.NewContext()))
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no rows, got %+v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateGroupDuplicateName(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("insert into org_groups").
		WithArgs(int64(1), nil, "Holding").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	err := store.CreateGroup(context.Background(), &org.Group{TenantID: 1, Name: "Holding"})
	if !errors.Is(err, org.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreateOperatingUnitUnknownEntity(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select 1 from legal_entities").
		WithArgs(int64(1), int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	err := store.CreateOperatingUnit(context.Background(), &org.OperatingUnit{
		TenantID:      1,
		LegalEntityID: 9,
		Name:          "Branch",
	})
	if !errors.Is(err, org.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
