package org

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

// InMemory implements Store with in-process concurrency safety. Used by tests
// and local development; production runs on the Postgres store.
type InMemory struct {
	mu     sync.RWMutex
	nextID int64
	groups map[int64]*Group
	les    map[int64]*LegalEntity
	ous    map[int64]*OperatingUnit
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{
		groups: make(map[int64]*Group),
		les:    make(map[int64]*LegalEntity),
		ous:    make(map[int64]*OperatingUnit),
	}
}

func (s *InMemory) allocate() int64 {
	s.nextID++
	return s.nextID
}

func (s *InMemory) CreateGroup(_ context.Context, g *Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ParentGroupID > 0 {
		parent, ok := s.groups[g.ParentGroupID]
		if !ok || parent.TenantID != g.TenantID {
			return ErrNotFound
		}
	}
	g.ID = s.allocate()
	now := time.Now().UTC()
	g.CreatedAt, g.UpdatedAt = now, now
	cp := *g
	s.groups[g.ID] = &cp
	return nil
}

func (s *InMemory) ListGroups(_ context.Context, tenantID int64, visible scope.Predicate) ([]Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Group
	for _, g := range s.groups {
		if g.TenantID != tenantID {
			continue
		}
		if !visible.MatchAny(map[scope.Type]int64{scope.TypeGroup: g.ID}) {
			continue
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) CreateLegalEntity(_ context.Context, le *LegalEntity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.groups[le.GroupID]
	if !ok || group.TenantID != le.TenantID {
		return ErrNotFound
	}
	le.ID = s.allocate()
	now := time.Now().UTC()
	le.CreatedAt, le.UpdatedAt = now, now
	cp := *le
	s.les[le.ID] = &cp
	return nil
}

func (s *InMemory) ListLegalEntities(_ context.Context, tenantID int64, visible scope.Predicate) ([]LegalEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []LegalEntity
	for _, le := range s.les {
		if le.TenantID != tenantID {
			continue
		}
		dims := map[scope.Type]int64{
			scope.TypeLegalEntity: le.ID,
			scope.TypeGroup:       le.GroupID,
			scope.TypeCountry:     le.CountryID,
		}
		if !visible.MatchAny(dims) {
			continue
		}
		out = append(out, *le)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) GetLegalEntity(_ context.Context, tenantID, id int64) (LegalEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	le, ok := s.les[id]
	if !ok || le.TenantID != tenantID {
		return LegalEntity{}, ErrNotFound
	}
	return *le, nil
}

func (s *InMemory) CreateOperatingUnit(_ context.Context, ou *OperatingUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	le, ok := s.les[ou.LegalEntityID]
	if !ok || le.TenantID != ou.TenantID {
		return ErrNotFound
	}
	ou.ID = s.allocate()
	now := time.Now().UTC()
	ou.CreatedAt, ou.UpdatedAt = now, now
	cp := *ou
	s.ous[ou.ID] = &cp
	return nil
}

func (s *InMemory) ListOperatingUnits(_ context.Context, tenantID int64, visible scope.Predicate) ([]OperatingUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []OperatingUnit
	for _, ou := range s.ous {
		if ou.TenantID != tenantID {
			continue
		}
		dims := map[scope.Type]int64{
			scope.TypeOperatingUnit: ou.ID,
			scope.TypeLegalEntity:   ou.LegalEntityID,
		}
		if !visible.MatchAny(dims) {
			continue
		}
		out = append(out, *ou)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) ListOperatingUnitsByLegalEntity(_ context.Context, tenantID, legalEntityID int64) ([]OperatingUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []OperatingUnit
	for _, ou := range s.ous {
		if ou.TenantID != tenantID || ou.LegalEntityID != legalEntityID {
			continue
		}
		out = append(out, *ou)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
