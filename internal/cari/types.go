package cari

import (
	"context"
	"errors"
	"time"

	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

var (
	ErrNotFound        = errors.New("cari: not found")
	ErrConflict        = errors.New("cari: account code already exists")
	ErrInvalidInput    = errors.New("cari: invalid input")
	ErrInvalidCurrency = errors.New("cari: invalid currency")
)

// Account is a customer account card. Balance is kept in minor units of the
// account currency, no floats. The legal entity and operating unit columns
// are the account's scope dimensions.
type Account struct {
	ID              string    `json:"id"`
	TenantID        int64     `json:"tenant_id"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	Currency        string    `json:"currency"`
	Balance         int64     `json:"balance"`
	LegalEntityID   int64     `json:"legal_entity_id"`
	OperatingUnitID int64     `json:"operating_unit_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Store persists accounts. Listing receives the caller's visibility predicate
// and applies it row by row over the two dimension columns.
type Store interface {
	CreateAccount(ctx context.Context, a *Account) error
	GetAccount(ctx context.Context, tenantID int64, id string) (Account, error)
	ListAccounts(ctx context.Context, tenantID int64, visible scope.Predicate) ([]Account, error)
}
