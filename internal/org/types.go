package org

import (
	"context"
	"errors"
	"time"

	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

var (
	ErrNotFound     = errors.New("org: not found")
	ErrConflict     = errors.New("org: resource conflict")
	ErrInvalidInput = errors.New("org: invalid input")
)

// Group is a top-level grouping of legal entities within a tenant. Groups may
// nest one level under a parent group.
type Group struct {
	ID            int64     `json:"id"`
	TenantID      int64     `json:"tenant_id"`
	ParentGroupID int64     `json:"parent_group_id,omitempty"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LegalEntity is a registered company inside a group, classified by country.
type LegalEntity struct {
	ID        int64     `json:"id"`
	TenantID  int64     `json:"tenant_id"`
	GroupID   int64     `json:"group_id"`
	CountryID int64     `json:"country_id"`
	Name      string    `json:"name"`
	TaxNumber string    `json:"tax_number,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OperatingUnit is a branch or business line under one legal entity.
type OperatingUnit struct {
	ID            int64     `json:"id"`
	TenantID      int64     `json:"tenant_id"`
	LegalEntityID int64     `json:"legal_entity_id"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Store persists the organizational hierarchy. Listing methods receive the
// caller's visibility predicate and must apply it row by row; they never see
// the raw grant set.
type Store interface {
	CreateGroup(ctx context.Context, g *Group) error
	ListGroups(ctx context.Context, tenantID int64, visible scope.Predicate) ([]Group, error)

	CreateLegalEntity(ctx context.Context, le *LegalEntity) error
	ListLegalEntities(ctx context.Context, tenantID int64, visible scope.Predicate) ([]LegalEntity, error)
	GetLegalEntity(ctx context.Context, tenantID, id int64) (LegalEntity, error)

	CreateOperatingUnit(ctx context.Context, ou *OperatingUnit) error
	ListOperatingUnits(ctx context.Context, tenantID int64, visible scope.Predicate) ([]OperatingUnit, error)
	ListOperatingUnitsByLegalEntity(ctx context.Context, tenantID, legalEntityID int64) ([]OperatingUnit, error)
}
