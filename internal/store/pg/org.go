package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mrcaglayan/my-appv2-sub015/internal/org"
	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

var (
	groupCols = map[scope.Type]string{
		scope.TypeGroup: "id",
	}
	legalEntityCols = map[scope.Type]string{
		scope.TypeLegalEntity: "id",
		scope.TypeGroup:       "group_id",
		scope.TypeCountry:     "country_id",
	}
	operatingUnitCols = map[scope.Type]string{
		scope.TypeOperatingUnit: "id",
		scope.TypeLegalEntity:   "legal_entity_id",
	}
)

func (s *Store) CreateGroup(ctx context.Context, g *org.Group) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	if g.ParentGroupID > 0 {
		var exists int
		err := s.db.QueryRowContext(ctx, `
			select 1 from org_groups where tenant_id = $1 and id = $2
		`, g.TenantID, g.ParentGroupID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: parent group %d", org.ErrNotFound, g.ParentGroupID)
		}
		if err != nil {
			return err
		}
	}
	var parent sql.NullInt64
	if g.ParentGroupID > 0 {
		parent = sql.NullInt64{Int64: g.ParentGroupID, Valid: true}
	}
	err := s.db.QueryRowContext(ctx, `
		insert into org_groups (tenant_id, parent_group_id, name)
		values ($1, $2, $3)
		returning id, created_at, updated_at
	`, g.TenantID, parent, g.Name).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return org.ErrConflict
			case pgErrForeignKeyViolation:
				return org.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (s *Store) ListGroups(ctx context.Context, tenantID int64, visible scope.Predicate) ([]org.Group, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	pred, args, _ := visible.SQLColumns(groupCols, 2)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		select id, tenant_id, coalesce(parent_group_id, 0), name, created_at, updated_at
		from org_groups
		where tenant_id = $1 and %s
		order by id
	`, pred), append([]any{tenantID}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []org.Group
	for rows.Next() {
		var g org.Group
		if err := rows.Scan(&g.ID, &g.TenantID, &g.ParentGroupID, &g.Name, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *Store) CreateLegalEntity(ctx context.Context, le *org.LegalEntity) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `
		select 1 from org_groups where tenant_id = $1 and id = $2
	`, le.TenantID, le.GroupID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: group %d", org.ErrNotFound, le.GroupID)
	}
	if err != nil {
		return err
	}
	err = s.db.QueryRowContext(ctx, `
		insert into legal_entities (tenant_id, group_id, country_id, name, tax_number)
		values ($1, $2, $3, $4, $5)
		returning id, created_at, updated_at
	`, le.TenantID, le.GroupID, le.CountryID, le.Name, nullIfEmpty(le.TaxNumber)).
		Scan(&le.ID, &le.CreatedAt, &le.UpdatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return org.ErrConflict
			case pgErrForeignKeyViolation:
				return org.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (s *Store) ListLegalEntities(ctx context.Context, tenantID int64, visible scope.Predicate) ([]org.LegalEntity, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	pred, args, _ := visible.SQLColumns(legalEntityCols, 2)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		select id, tenant_id, group_id, country_id, name, coalesce(tax_number, ''), created_at, updated_at
		from legal_entities
		where tenant_id = $1 and %s
		order by id
	`, pred), append([]any{tenantID}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []org.LegalEntity
	for rows.Next() {
		var le org.LegalEntity
		if err := rows.Scan(&le.ID, &le.TenantID, &le.GroupID, &le.CountryID, &le.Name,
			&le.TaxNumber, &le.CreatedAt, &le.UpdatedAt); err != nil {
			return nil, err
		}
		entities = append(entities, le)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entities, nil
}

func (s *Store) GetLegalEntity(ctx context.Context, tenantID, id int64) (org.LegalEntity, error) {
	if s.db == nil {
		return org.LegalEntity{}, errors.New("database connection unavailable")
	}
	var le org.LegalEntity
	err := s.db.QueryRowContext(ctx, `
		select id, tenant_id, group_id, country_id, name, coalesce(tax_number, ''), created_at, updated_at
		from legal_entities
		where tenant_id = $1 and id = $2
	`, tenantID, id).Scan(&le.ID, &le.TenantID, &le.GroupID, &le.CountryID, &le.Name,
		&le.TaxNumber, &le.CreatedAt, &le.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return org.LegalEntity{}, org.ErrNotFound
	}
	if err != nil {
		return org.LegalEntity{}, err
	}
	return le, nil
}

func (s *Store) CreateOperatingUnit(ctx context.Context, ou *org.OperatingUnit) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `
		select 1 from legal_entities where tenant_id = $1 and id = $2
	`, ou.TenantID, ou.LegalEntityID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: legal entity %d", org.ErrNotFound, ou.LegalEntityID)
	}
	if err != nil {
		return err
	}
	err = s.db.QueryRowContext(ctx, `
		insert into operating_units (tenant_id, legal_entity_id, name)
		values ($1, $2, $3)
		returning id, created_at, updated_at
	`, ou.TenantID, ou.LegalEntityID, ou.Name).Scan(&ou.ID, &ou.CreatedAt, &ou.UpdatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return org.ErrConflict
			case pgErrForeignKeyViolation:
				return org.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (s *Store) ListOperatingUnits(ctx context.Context, tenantID int64, visible scope.Predicate) ([]org.OperatingUnit, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	pred, args, _ := visible.SQLColumns(operatingUnitCols, 2)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		select id, tenant_id, legal_entity_id, name, created_at, updated_at
		from operating_units
		where tenant_id = $1 and %s
		order by id
	`, pred), append([]any{tenantID}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOperatingUnits(rows)
}

func (s *Store) ListOperatingUnitsByLegalEntity(ctx context.Context, tenantID, legalEntityID int64) ([]org.OperatingUnit, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, tenant_id, legal_entity_id, name, created_at, updated_at
		from operating_units
		where tenant_id = $1 and legal_entity_id = $2
		order by id
	`, tenantID, legalEntityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOperatingUnits(rows)
}

func scanOperatingUnits(rows *sql.Rows) ([]org.OperatingUnit, error) {
	var units []org.OperatingUnit
	for rows.Next() {
		var ou org.OperatingUnit
		if err := rows.Scan(&ou.ID, &ou.TenantID, &ou.LegalEntityID, &ou.Name, &ou.CreatedAt, &ou.UpdatedAt); err != nil {
			return nil, err
		}
		units = append(units, ou)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return units, nil
}
