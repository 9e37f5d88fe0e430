package cari

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

// Service applies scope authorization to account mutations and reads. The
// permission gate has already run; this layer owns the dimensional checks.
type Service struct {
	store Store
	audit *audit.Service
}

func NewService(store Store, auditSvc *audit.Service) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cari: store is required")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("cari: audit service is required")
	}
	return &Service{store: store, audit: auditSvc}, nil
}

type CreateAccountInput struct {
	Code            string
	Name            string
	Currency        string
	LegalEntityID   int64
	OperatingUnitID int64
}

func (in CreateAccountInput) validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return fmt.Errorf("%w: account code is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: account name is required", ErrInvalidInput)
	}
	if !validCurrency(in.Currency) {
		return ErrInvalidCurrency
	}
	if in.LegalEntityID <= 0 || in.OperatingUnitID <= 0 {
		return fmt.Errorf("%w: legal_entity_id and operating_unit_id are required", ErrInvalidInput)
	}
	return nil
}

func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// CreateAccount creates an account card. The account declares both its
// LEGAL_ENTITY and OPERATING_UNIT dimensions and the caller must be scoped to
// each independently.
func (s *Service) CreateAccount(ctx context.Context, actor Actor, sc scope.Context, in CreateAccountInput) (Account, error) {
	if err := actor.validate(); err != nil {
		return Account{}, err
	}
	if err := in.validate(); err != nil {
		return Account{}, err
	}

	dims := map[scope.Type]int64{
		scope.TypeLegalEntity:   in.LegalEntityID,
		scope.TypeOperatingUnit: in.OperatingUnitID,
	}
	allowed := scope.AuthorizeWrite(sc, dims)
	obs.AuthzDecision("write", allowed)
	if !allowed {
		s.recordDenied(ctx, actor, map[string]any{
			"action":            audit.ActionCariAccountCreate,
			"legal_entity_id":   in.LegalEntityID,
			"operating_unit_id": in.OperatingUnitID,
		})
		return Account{}, scope.ErrForbidden
	}

	a := &Account{
		TenantID:        actor.TenantID,
		Code:            strings.TrimSpace(in.Code),
		Name:            strings.TrimSpace(in.Name),
		Currency:        in.Currency,
		LegalEntityID:   in.LegalEntityID,
		OperatingUnitID: in.OperatingUnitID,
	}
	if err := s.store.CreateAccount(ctx, a); err != nil {
		return Account{}, err
	}
	if err := s.audit.Record(ctx, &audit.Entry{
		TenantID:     actor.TenantID,
		ActorUserID:  actor.UserID,
		Action:       audit.ActionCariAccountCreate,
		ResourceType: "cari_account",
		ResourceID:   a.ID,
		Payload: map[string]any{
			"code":              a.Code,
			"currency":          a.Currency,
			"legal_entity_id":   a.LegalEntityID,
			"operating_unit_id": a.OperatingUnitID,
		},
	}); err != nil {
		return Account{}, err
	}
	return *a, nil
}

// GetAccount returns one account. An account outside the caller's visibility
// is reported as forbidden, not as missing: the id was valid, the caller
// simply may not read it.
func (s *Service) GetAccount(ctx context.Context, actor Actor, sc scope.Context, id string) (Account, error) {
	if err := actor.validate(); err != nil {
		return Account{}, err
	}
	if strings.TrimSpace(id) == "" {
		return Account{}, fmt.Errorf("%w: account id is required", ErrInvalidInput)
	}
	a, err := s.store.GetAccount(ctx, actor.TenantID, id)
	if err != nil {
		return Account{}, err
	}
	visible := scope.Visibility(sc)
	ok := visible.MatchAny(map[scope.Type]int64{
		scope.TypeLegalEntity:   a.LegalEntityID,
		scope.TypeOperatingUnit: a.OperatingUnitID,
	})
	obs.AuthzDecision("read", ok)
	if !ok {
		s.recordDenied(ctx, actor, map[string]any{"account_id": id})
		return Account{}, scope.ErrForbidden
	}
	return a, nil
}

// ListAccounts returns the accounts visible under the context. Visibility is
// disjunctive over the legal entity and operating unit columns.
func (s *Service) ListAccounts(ctx context.Context, actor Actor, sc scope.Context) ([]Account, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	visible := scope.Visibility(sc)
	if visible.Empty() {
		return []Account{}, nil
	}
	items, err := s.store.ListAccounts(ctx, actor.TenantID, visible)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Account{}
	}
	return items, nil
}

func (s *Service) recordDenied(ctx context.Context, actor Actor, payload map[string]any) {
	_ = s.audit.Record(ctx, &audit.Entry{
		TenantID:     actor.TenantID,
		ActorUserID:  actor.UserID,
		Action:       audit.ActionAccessDenied,
		ResourceType: "cari_account",
		Payload:      payload,
	})
}
