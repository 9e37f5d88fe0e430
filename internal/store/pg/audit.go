package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mrcaglayan/my-appv2-sub015/internal/audit"
	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

// Append writes one audit row. Rows are append-only; there is no update or
// delete path in this package.
func (s *Store) Append(ctx context.Context, entry *audit.Entry) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	var payload []byte
	if len(entry.Payload) > 0 {
		bytes, err := json.Marshal(entry.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		payload = bytes
	}
	var scopeType sql.NullString
	if entry.ScopeType != "" {
		scopeType = sql.NullString{String: string(entry.ScopeType), Valid: true}
	}
	var scopeID sql.NullInt64
	if entry.ScopeID > 0 {
		scopeID = sql.NullInt64{Int64: entry.ScopeID, Valid: true}
	}
	err := s.db.QueryRowContext(ctx, `
		insert into audit_logs (tenant_id, actor_user_id, target_user_id, action, resource_type, resource_id,
			scope_type, scope_id, request_id, ip_address, user_agent, payload, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, coalesce($13, now()))
		returning id, created_at
	`, entry.TenantID, entry.ActorUserID, entry.TargetUserID, entry.Action, entry.ResourceType,
		nullIfEmpty(entry.ResourceID), scopeType, scopeID, nullIfEmpty(entry.RequestID),
		nullIfEmpty(entry.IPAddress), nullIfEmpty(entry.UserAgent), payload, nullTime(entry.CreatedAt),
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return fmt.Errorf("%w: tenant %d", scope.ErrNotFound, entry.TenantID)
		}
		return err
	}
	return nil
}

// List returns one page of audit rows. The caller's visibility predicate is
// rendered to SQL with positional arguments; filter values never reach the
// query text. Rows without a scope dimension match any non-empty visibility.
func (s *Store) List(ctx context.Context, tenantID int64, visible scope.Predicate, f audit.Filter) ([]audit.Entry, int, error) {
	if s.db == nil {
		return nil, 0, errors.New("database connection unavailable")
	}

	var (
		where []string
		args  []any
		idx   = 1
	)
	where = append(where, fmt.Sprintf("tenant_id = $%d", idx))
	args = append(args, tenantID)
	idx++

	pred, predArgs, next := visible.SQL("scope_type", "scope_id", idx)
	where = append(where, fmt.Sprintf("(scope_type is null or %s)", pred))
	args = append(args, predArgs...)
	idx = next

	if f.ScopeType != "" {
		where = append(where, fmt.Sprintf("scope_type = $%d and scope_id = $%d", idx, idx+1))
		args = append(args, string(f.ScopeType), f.ScopeID)
		idx += 2
	}
	if f.ActorUserID > 0 {
		where = append(where, fmt.Sprintf("actor_user_id = $%d", idx))
		args = append(args, f.ActorUserID)
		idx++
	}
	if f.TargetUserID > 0 {
		where = append(where, fmt.Sprintf("target_user_id = $%d", idx))
		args = append(args, f.TargetUserID)
		idx++
	}
	if f.Action != "" {
		where = append(where, fmt.Sprintf("action = $%d", idx))
		args = append(args, f.Action)
		idx++
	}
	if f.ResourceType != "" {
		where = append(where, fmt.Sprintf("resource_type = $%d", idx))
		args = append(args, f.ResourceType)
		idx++
	}
	if !f.CreatedFrom.IsZero() {
		where = append(where, fmt.Sprintf("created_at >= $%d", idx))
		args = append(args, f.CreatedFrom)
		idx++
	}
	if !f.CreatedTo.IsZero() {
		where = append(where, fmt.Sprintf("created_at <= $%d", idx))
		args = append(args, f.CreatedTo)
		idx++
	}

	cond := strings.Join(where, " and ")

	var total int
	if err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`select count(*) from audit_logs where %s`, cond), args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		select id, tenant_id, actor_user_id, target_user_id, action, resource_type,
			coalesce(resource_id, ''), coalesce(scope_type, ''), coalesce(scope_id, 0),
			coalesce(request_id, ''), coalesce(ip_address, ''), coalesce(user_agent, ''),
			payload, created_at
		from audit_logs
		where %s
		order by created_at desc, id desc
		limit $%d offset $%d
	`, cond, idx, idx+1)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			e         audit.Entry
			scopeType string
			payload   []byte
		)
		if err := rows.Scan(&e.ID, &e.TenantID, &e.ActorUserID, &e.TargetUserID, &e.Action,
			&e.ResourceType, &e.ResourceID, &scopeType, &e.ScopeID,
			&e.RequestID, &e.IPAddress, &e.UserAgent, &payload, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		e.ScopeType = scope.Type(scopeType)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &e.Payload); err != nil {
				return nil, 0, fmt.Errorf("decode payload: %w", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
