package org

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrcaglayan/my-appv2-sub015/internal/audit"
	"github.com/mrcaglayan/my-appv2-sub015/internal/obs"
	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

// Actor identifies who is performing an operation.
type Actor struct {
	TenantID int64
	UserID   int64
}

func (a Actor) validate() error {
	if a.TenantID <= 0 || a.UserID <= 0 {
		return fmt.Errorf("%w: actor tenant and user are required", ErrInvalidInput)
	}
	return nil
}

// Service applies scope authorization to hierarchy mutations and listings.
// The permission gate has already run by the time these methods are called;
// this layer owns the dimensional checks.
type Service struct {
	store Store
	audit *audit.Service
}

func NewService(store Store, auditSvc *audit.Service) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("org: store is required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("org: audit service is required")
	}
	return &Service{store: store, audit: auditSvc}, nil
}

type CreateGroupInput struct {
	Name          string
	ParentGroupID int64
}

// CreateGroup creates a group. A nested group declares its parent GROUP
// dimension; a root group declares no dimensions and therefore requires a
// tenant-wide context.
func (s *Service) CreateGroup(ctx context.Context, actor Actor, sc scope.Context, in CreateGroupInput) (Group, error) {
	if err := actor.validate(); err != nil {
		return Group{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Group{}, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}
	if in.ParentGroupID < 0 {
		return Group{}, fmt.Errorf("%w: parent_group_id must not be negative", ErrInvalidInput)
	}

	dims := map[scope.Type]int64{}
	if in.ParentGroupID > 0 {
		dims[scope.TypeGroup] = in.ParentGroupID
	}
	if err := s.authorizeWrite(ctx, actor, sc, dims, audit.ActionGroupCreate); err != nil {
		return Group{}, err
	}

	g := &Group{TenantID: actor.TenantID, ParentGroupID: in.ParentGroupID, Name: name}
	if err := s.store.CreateGroup(ctx, g); err != nil {
		return Group{}, err
	}
	if err := s.recordCreate(ctx, actor, audit.ActionGroupCreate, "group", g.ID, map[string]any{"name": g.Name}); err != nil {
		return Group{}, err
	}
	return *g, nil
}

type CreateLegalEntityInput struct {
	GroupID   int64
	CountryID int64
	Name      string
	TaxNumber string
}

// CreateLegalEntity creates a legal entity. The resource declares both its
// GROUP and COUNTRY dimensions; the caller must be scoped to each of them
// independently.
func (s *Service) CreateLegalEntity(ctx context.Context, actor Actor, sc scope.Context, in CreateLegalEntityInput) (LegalEntity, error) {
	if err := actor.validate(); err != nil {
		return LegalEntity{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return LegalEntity{}, fmt.Errorf("%w: legal entity name is required", ErrInvalidInput)
	}
	if in.GroupID <= 0 || in.CountryID <= 0 {
		return LegalEntity{}, fmt.Errorf("%w: group_id and country_id are required", ErrInvalidInput)
	}

	dims := map[scope.Type]int64{
		scope.TypeGroup:   in.GroupID,
		scope.TypeCountry: in.CountryID,
	}
	if err := s.authorizeWrite(ctx, actor, sc, dims, audit.ActionLegalEntityCreate); err != nil {
		return LegalEntity{}, err
	}

	le := &LegalEntity{
		TenantID:  actor.TenantID,
		GroupID:   in.GroupID,
		CountryID: in.CountryID,
		Name:      name,
		TaxNumber: strings.TrimSpace(in.TaxNumber),
	}
	if err := s.store.CreateLegalEntity(ctx, le); err != nil {
		return LegalEntity{}, err
	}
	if err := s.recordCreate(ctx, actor, audit.ActionLegalEntityCreate, "legal_entity", le.ID, map[string]any{
		"name":       le.Name,
		"group_id":   le.GroupID,
		"country_id": le.CountryID,
	}); err != nil {
		return LegalEntity{}, err
	}
	return *le, nil
}

type CreateOperatingUnitInput struct {
	LegalEntityID int64
	Name          string
}

// CreateOperatingUnit creates an operating unit. The resource declares only
// its LEGAL_ENTITY dimension; group/country coverage is not additionally
// required even though the legal entity itself belongs to both.
func (s *Service) CreateOperatingUnit(ctx context.Context, actor Actor, sc scope.Context, in CreateOperatingUnitInput) (OperatingUnit, error) {
	if err := actor.validate(); err != nil {
		return OperatingUnit{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return OperatingUnit{}, fmt.Errorf("%w: operating unit name is required", ErrInvalidInput)
	}
	if in.LegalEntityID <= 0 {
		return OperatingUnit{}, fmt.Errorf("%w: legal_entity_id is required", ErrInvalidInput)
	}
	if _, err := s.store.GetLegalEntity(ctx, actor.TenantID, in.LegalEntityID); err != nil {
		return OperatingUnit{}, err
	}

	dims := map[scope.Type]int64{scope.TypeLegalEntity: in.LegalEntityID}
	if err := s.authorizeWrite(ctx, actor, sc, dims, audit.ActionOperatingUnitCreate); err != nil {
		return OperatingUnit{}, err
	}

	ou := &OperatingUnit{TenantID: actor.TenantID, LegalEntityID: in.LegalEntityID, Name: name}
	if err := s.store.CreateOperatingUnit(ctx, ou); err != nil {
		return OperatingUnit{}, err
	}
	if err := s.recordCreate(ctx, actor, audit.ActionOperatingUnitCreate, "operating_unit", ou.ID, map[string]any{
		"name":            ou.Name,
		"legal_entity_id": ou.LegalEntityID,
	}); err != nil {
		return OperatingUnit{}, err
	}
	return *ou, nil
}

// ListGroups returns the groups visible under the context.
func (s *Service) ListGroups(ctx context.Context, actor Actor, sc scope.Context) ([]Group, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	visible := scope.Visibility(sc)
	if visible.Empty() {
		return []Group{}, nil
	}
	items, err := s.store.ListGroups(ctx, actor.TenantID, visible)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Group{}
	}
	return items, nil
}

// ListLegalEntities returns the legal entities visible under the context.
// Visibility is disjunctive: a legal entity shows up if its own id, its
// group, or its country matches a grant.
func (s *Service) ListLegalEntities(ctx context.Context, actor Actor, sc scope.Context) ([]LegalEntity, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	visible := scope.Visibility(sc)
	if visible.Empty() {
		return []LegalEntity{}, nil
	}
	items, err := s.store.ListLegalEntities(ctx, actor.TenantID, visible)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []LegalEntity{}
	}
	return items, nil
}

// ListOperatingUnits returns visible operating units. When legalEntityID is
// non-zero, the listing is narrowed to that parent, which requires a grant at
// LEGAL_ENTITY level or broader covering it: holding individual units under
// the parent does not prove the caller may enumerate all of them.
func (s *Service) ListOperatingUnits(ctx context.Context, actor Actor, sc scope.Context, legalEntityID int64) ([]OperatingUnit, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	if legalEntityID > 0 {
		le, err := s.store.GetLegalEntity(ctx, actor.TenantID, legalEntityID)
		if err != nil {
			return nil, err
		}
		ancestors := map[scope.Type]int64{
			scope.TypeGroup:   le.GroupID,
			scope.TypeCountry: le.CountryID,
		}
		err = scope.AuthorizeFilter(sc, scope.TypeLegalEntity, legalEntityID, ancestors)
		obs.AuthzDecision("filter", err == nil)
		if err != nil {
			s.recordDenied(ctx, actor, "operating_unit", map[string]any{
				"filter":          "legal_entity_id",
				"legal_entity_id": legalEntityID,
			})
			return nil, err
		}
		items, err := s.store.ListOperatingUnitsByLegalEntity(ctx, actor.TenantID, legalEntityID)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []OperatingUnit{}
		}
		return items, nil
	}

	visible := scope.Visibility(sc)
	if visible.Empty() {
		return []OperatingUnit{}, nil
	}
	items, err := s.store.ListOperatingUnits(ctx, actor.TenantID, visible)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []OperatingUnit{}
	}
	return items, nil
}

func (s *Service) authorizeWrite(ctx context.Context, actor Actor, sc scope.Context, dims map[scope.Type]int64, action string) error {
	allowed := scope.AuthorizeWrite(sc, dims)
	obs.AuthzDecision("write", allowed)
	if allowed {
		return nil
	}
	payload := map[string]any{"action": action}
	for t, id := range dims {
		payload[strings.ToLower(string(t))+"_id"] = id
	}
	s.recordDenied(ctx, actor, "org", payload)
	return scope.ErrForbidden
}

func (s *Service) recordCreate(ctx context.Context, actor Actor, action, resourceType string, resourceID int64, payload map[string]any) error {
	return s.audit.Record(ctx, &audit.Entry{
		TenantID:     actor.TenantID,
		ActorUserID:  actor.UserID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   fmt.Sprintf("%d", resourceID),
		Payload:      payload,
	})
}

// recordDenied logs a denied attempt. Denial is an expected outcome, not a
// fault, so a failure to write the denial record does not mask the denial.
func (s *Service) recordDenied(ctx context.Context, actor Actor, resourceType string, payload map[string]any) {
	_ = s.audit.Record(ctx, &audit.Entry{
		TenantID:     actor.TenantID,
		ActorUserID:  actor.UserID,
		Action:       audit.ActionAccessDenied,
		ResourceType: resourceType,
		Payload:      payload,
	})
}
