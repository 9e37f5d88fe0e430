package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mrcaglayan/my-appv2-sub015/internal/cari"
	"github.com/mrcaglayan/my-appv2-sub015/internal/ids"
	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

var cariCols = map[scope.Type]string{
	scope.TypeLegalEntity:   "legal_entity_id",
	scope.TypeOperatingUnit: "operating_unit_id",
}

func (s *Store) CreateAccount(ctx context.Context, a *cari.Account) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	id := ids.New()
	err := s.db.QueryRowContext(ctx, `
		insert into cari_accounts (id, tenant_id, code, name, currency, legal_entity_id, operating_unit_id)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning created_at, updated_at
	`, id, a.TenantID, a.Code, a.Name, a.Currency, a.LegalEntityID, a.OperatingUnitID).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return cari.ErrConflict
			case pgErrForeignKeyViolation:
				return cari.ErrNotFound
			}
		}
		return err
	}
	a.ID = id
	return nil
}

func (s *Store) GetAccount(ctx context.Context, tenantID int64, id string) (cari.Account, error) {
	if s.db == nil {
		return cari.Account{}, errors.New("database connection unavailable")
	}
	var a cari.Account
	err := s.db.QueryRowContext(ctx, `
		select id, tenant_id, code, name, currency, balance, legal_entity_id, operating_unit_id, created_at, updated_at
		from cari_accounts
		where tenant_id = $1 and id = $2
	`, tenantID, id).Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &a.Currency, &a.Balance,
		&a.LegalEntityID, &a.OperatingUnitID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return cari.Account{}, cari.ErrNotFound
	}
	if err != nil {
		return cari.Account{}, err
	}
	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context, tenantID int64, visible scope.Predicate) ([]cari.Account, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	pred, args, _ := visible.SQLColumns(cariCols, 2)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		select id, tenant_id, code, name, currency, balance, legal_entity_id, operating_unit_id, created_at, updated_at
		from cari_accounts
		where tenant_id = $1 and %s
		order by code
	`, pred), append([]any{tenantID}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []cari.Account
	for rows.Next() {
		var a cari.Account
		if err := rows.Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &a.Currency, &a.Balance,
			&a.LegalEntityID, &a.OperatingUnitID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}
