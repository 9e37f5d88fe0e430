package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mrcaglayan/my-appv2-sub015/internal/audit"
	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

// ReplaceGrants swaps a user's grant set in one transaction. The old set is
// deleted, the new set inserted, and the audit row appended before commit;
// any failure leaves the prior set intact.
func (s *Store) ReplaceGrants(ctx context.Context, tenantID, userID int64, grants []scope.GrantInput) ([]scope.Grant, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	if err := scope.ValidateGrantSet(grants); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `
		select 1 from users where tenant_id = $1 and id = $2
	`, tenantID, userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %d", scope.ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		delete from scope_grants where tenant_id = $1 and user_id = $2
	`, tenantID, userID); err != nil {
		return nil, err
	}

	result := make([]scope.Grant, 0, len(grants))
	for _, g := range grants {
		if _, err := tx.ExecContext(ctx, `
			insert into scope_grants (tenant_id, user_id, scope_type, scope_id, effect)
			values ($1, $2, $3, $4, $5)
		`, tenantID, userID, string(g.Type), g.ScopeID, string(g.Effect)); err != nil {
			if pgErr, ok := maybePgError(err); ok {
				switch pgErr.Code {
				case pgErrUniqueViolation:
					return nil, fmt.Errorf("%w: duplicate grant %s/%d", scope.ErrInvalidInput, g.Type, g.ScopeID)
				case pgErrForeignKeyViolation:
					return nil, fmt.Errorf("%w: scope target %s/%d", scope.ErrNotFound, g.Type, g.ScopeID)
				case pgErrCheckViolation:
					return nil, fmt.Errorf("%w: grant %s/%d rejected by constraint", scope.ErrInvalidInput, g.Type, g.ScopeID)
				}
			}
			return nil, err
		}
		result = append(result, scope.Grant{
			TenantID: tenantID,
			UserID:   userID,
			Type:     g.Type,
			ScopeID:  g.ScopeID,
			Effect:   g.Effect,
		})
	}

	payload, err := json.Marshal(map[string]any{"grants": result})
	if err != nil {
		return nil, fmt.Errorf("marshal grant payload: %w", err)
	}
	actorID, _ := audit.ActorFromContext(ctx)
	requestID, _ := audit.RequestIDFromContext(ctx)
	if _, err := tx.ExecContext(ctx, `
		insert into audit_logs (tenant_id, actor_user_id, target_user_id, action, resource_type, resource_id, request_id, payload)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, tenantID, actorID, userID, audit.ActionScopesReplace, "scope_grants",
		fmt.Sprintf("%d", userID), nullIfEmpty(requestID), payload); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return result, nil
}

// Grants loads the user's current grant set.
func (s *Store) Grants(ctx context.Context, tenantID, userID int64) ([]scope.Grant, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select scope_type, scope_id, effect
		from scope_grants
		where tenant_id = $1 and user_id = $2
		order by scope_type, scope_id
	`, tenantID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []scope.Grant
	for rows.Next() {
		var (
			t      string
			id     int64
			effect string
		)
		if err := rows.Scan(&t, &id, &effect); err != nil {
			return nil, err
		}
		grants = append(grants, scope.Grant{
			TenantID: tenantID,
			UserID:   userID,
			Type:     scope.Type(t),
			ScopeID:  id,
			Effect:   scope.Effect(effect),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return grants, nil
}
