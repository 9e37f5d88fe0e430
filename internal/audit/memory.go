package audit

import (
	"context"
	"sort"
	"sync"

	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

// InMemory implements Store for tests and local development.
type InMemory struct {
	mu      sync.RWMutex
	nextID  int64
	entries []Entry
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	entry.ID = s.nextID
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *InMemory) List(_ context.Context, tenantID int64, visible scope.Predicate, f Filter) ([]Entry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Entry
	for _, e := range s.entries {
		if e.TenantID != tenantID {
			continue
		}
		// Unscoped entries are visible to any caller with some visibility;
		// scoped entries must match a grant.
		if e.ScopeType != "" && !visible.Match(e.ScopeType, e.ScopeID) {
			continue
		}
		if !matchesFilter(e, f) {
			continue
		}
		matched = append(matched, e)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	start := (f.Page - 1) * f.PageSize
	if start >= total {
		return []Entry{}, total, nil
	}
	end := start + f.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func matchesFilter(e Entry, f Filter) bool {
	if f.ScopeType != "" && (e.ScopeType != f.ScopeType || e.ScopeID != f.ScopeID) {
		return false
	}
	if f.ActorUserID != 0 && e.ActorUserID != f.ActorUserID {
		return false
	}
	if f.TargetUserID != 0 && e.TargetUserID != f.TargetUserID {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.ResourceType != "" && e.ResourceType != f.ResourceType {
		return false
	}
	if !f.CreatedFrom.IsZero() && e.CreatedAt.Before(f.CreatedFrom) {
		return false
	}
	if !f.CreatedTo.IsZero() && e.CreatedAt.After(f.CreatedTo) {
		return false
	}
	return true
}
