package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mrcaglayan/my-appv2-sub015/internal/auth"
)

func (s *Store) FindUser(ctx context.Context, tenantID, userID int64) (auth.User, error) {
	if s.db == nil {
		return auth.User{}, errors.New("database connection unavailable")
	}
	var user auth.User
	err := s.db.QueryRowContext(ctx, `
		select id, tenant_id, email, password_hash, status, created_at, updated_at
		from users
		where tenant_id = $1 and id = $2
	`, tenantID, userID).Scan(&user.ID, &user.TenantID, &user.Email, &user.PasswordHash,
		&user.Status, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrNotFound
	}
	if err != nil {
		return auth.User{}, err
	}
	return user, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (auth.User, error) {
	if s.db == nil {
		return auth.User{}, errors.New("database connection unavailable")
	}
	var user auth.User
	err := s.db.QueryRowContext(ctx, `
		select id, tenant_id, email, password_hash, status, created_at, updated_at
		from users
		where lower(email) = lower($1)
	`, email).Scan(&user.ID, &user.TenantID, &user.Email, &user.PasswordHash,
		&user.Status, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrNotFound
	}
	if err != nil {
		return auth.User{}, err
	}
	return user, nil
}

func (s *Store) UserRoles(ctx context.Context, tenantID, userID int64) ([]int64, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select role_id
		from user_roles
		where tenant_id = $1 and user_id = $2
		order by role_id
	`, tenantID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roleIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		roleIDs = append(roleIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roleIDs, nil
}

// RolePermissions loads the tenant's full role to permission code mapping in
// one query. The result is a snapshot suitable for caching.
func (s *Store) RolePermissions(ctx context.Context, tenantID int64) (map[int64][]string, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select r.id, p.code
		from roles r
		join role_permissions rp on rp.role_id = r.id
		join permissions p on p.id = rp.permission_id
		where r.tenant_id = $1
		order by r.id, p.code
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	perms := make(map[int64][]string)
	for rows.Next() {
		var (
			roleID int64
			code   string
		)
		if err := rows.Scan(&roleID, &code); err != nil {
			return nil, err
		}
		perms[roleID] = append(perms[roleID], code)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}
