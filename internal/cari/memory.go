package cari

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mrcaglayan/my-appv2-sub015/internal/ids"
	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

// InMemory implements Store with in-process concurrency safety. Used by tests
// and local development; production runs on the Postgres store.
type InMemory struct {
	mu    sync.RWMutex
	accts map[string]*Account
	codes map[int64]map[string]struct{} // tenant -> codes in use
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{
		accts: make(map[string]*Account),
		codes: make(map[int64]map[string]struct{}),
	}
}

func (s *InMemory) CreateAccount(_ context.Context, a *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	taken := s.codes[a.TenantID]
	if taken == nil {
		taken = make(map[string]struct{})
		s.codes[a.TenantID] = taken
	}
	if _, ok := taken[a.Code]; ok {
		return ErrConflict
	}
	a.ID = ids.New()
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	cp := *a
	s.accts[a.ID] = &cp
	taken[a.Code] = struct{}{}
	return nil
}

func (s *InMemory) GetAccount(_ context.Context, tenantID int64, id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accts[id]
	if !ok || a.TenantID != tenantID {
		return Account{}, ErrNotFound
	}
	return *a, nil
}

func (s *InMemory) ListAccounts(_ context.Context, tenantID int64, visible scope.Predicate) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Account
	for _, a := range s.accts {
		if a.TenantID != tenantID {
			continue
		}
		dims := map[scope.Type]int64{
			scope.TypeLegalEntity:   a.LegalEntityID,
			scope.TypeOperatingUnit: a.OperatingUnitID,
		}
		if !visible.MatchAny(dims) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
