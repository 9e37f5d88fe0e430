package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mrcaglayan/my-appv2-sub015/internal/obs"
	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Store persists audit rows. Append failures must propagate: a privileged
// mutation without its audit record is a failed mutation.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	// List returns one page of rows matching the visibility predicate and the
	// filter, plus the total match count. Ordering is (created_at desc, id desc).
	List(ctx context.Context, tenantID int64, visible scope.Predicate, f Filter) ([]Entry, int, error)
}

// Service records and queries audit entries.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("audit: store is required")
	}
	return &Service{store: store, now: time.Now}, nil
}

// Record appends one entry and mirrors it to the structured log. The append
// is synchronous; its error is the caller's error.
func (s *Service) Record(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return errors.New("audit: entry is required")
	}
	if strings.TrimSpace(entry.Action) == "" {
		return errors.New("audit: action is required")
	}
	if entry.TenantID <= 0 {
		return errors.New("audit: tenant is required")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	if entry.RequestID == "" {
		if rid, ok := RequestIDFromContext(ctx); ok {
			entry.RequestID = rid
		}
	}
	if err := s.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("audit: append: %w", err)
	}
	logEvent(entry)
	return nil
}

// List queries the audit log through the caller's own visibility context plus
// explicit filters. Entries carrying no scope dimension are visible to any
// caller who can see at least something; scoped entries only match grants.
func (s *Service) List(ctx context.Context, tenantID int64, sc scope.Context, f Filter) (Page, error) {
	if tenantID <= 0 {
		return Page{}, fmt.Errorf("%w: tenant is required", scope.ErrInvalidInput)
	}
	f, err := normalizeFilter(f)
	if err != nil {
		return Page{}, err
	}
	visible := scope.Visibility(sc)
	if visible.Empty() {
		// Default deny: no grants means an empty page, not an error.
		return Page{Items: []Entry{}, Page: f.Page, PageSize: f.PageSize}, nil
	}
	items, total, err := s.store.List(ctx, tenantID, visible, f)
	if err != nil {
		return Page{}, err
	}
	if items == nil {
		items = []Entry{}
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total + f.PageSize - 1) / f.PageSize
	}
	return Page{
		Items:      items,
		Page:       f.Page,
		PageSize:   f.PageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func normalizeFilter(f Filter) (Filter, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		return Filter{}, fmt.Errorf("%w: page size exceeds %d", scope.ErrInvalidInput, maxPageSize)
	}
	if f.ScopeType != "" {
		if !f.ScopeType.Valid() {
			return Filter{}, fmt.Errorf("%w: unknown scope type %q", scope.ErrInvalidInput, string(f.ScopeType))
		}
		if f.ScopeID <= 0 {
			return Filter{}, fmt.Errorf("%w: scope_id is required with scope_type", scope.ErrInvalidInput)
		}
	} else if f.ScopeID != 0 {
		return Filter{}, fmt.Errorf("%w: scope_type is required with scope_id", scope.ErrInvalidInput)
	}
	if !f.CreatedFrom.IsZero() && !f.CreatedTo.IsZero() && f.CreatedTo.Before(f.CreatedFrom) {
		return Filter{}, fmt.Errorf("%w: created_to precedes created_from", scope.ErrInvalidInput)
	}
	return f, nil
}

func logEvent(entry *Entry) {
	fields := map[string]any{
		"ts":        entry.CreatedAt.Format(time.RFC3339Nano),
		"type":      "audit",
		"event":     entry.Action,
		"tenant_id": entry.TenantID,
		"actor_id":  entry.ActorUserID,
	}
	if entry.RequestID != "" {
		fields["request_id"] = entry.RequestID
	}
	if entry.ResourceType != "" {
		fields["resource_type"] = entry.ResourceType
	}
	if entry.ResourceID != "" {
		fields["resource_id"] = entry.ResourceID
	}
	obs.LogRequest(fields)
}
