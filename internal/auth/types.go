package auth

import (
	"context"
	"time"
)

const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// Tenant is the isolation boundary. Every entity below is tenant-scoped;
// nothing is ever visible across tenants.
type Tenant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is a human or service account belonging to exactly one tenant.
type User struct {
	ID           int64     `json:"id"`
	TenantID     int64     `json:"tenant_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role is a named bundle of permission codes within one tenant.
type Role struct {
	ID          int64     `json:"id"`
	TenantID    int64     `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Permission is a fine-grained capability identified by its code.
type Permission struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// Assignment gives a user a role within their tenant.
type Assignment struct {
	UserID    int64     `json:"user_id"`
	RoleID    int64     `json:"role_id"`
	TenantID  int64     `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Store describes the persistence the auth subsystem needs.
type Store interface {
	FindUser(ctx context.Context, tenantID, userID int64) (User, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
	UserRoles(ctx context.Context, tenantID, userID int64) ([]int64, error)
	// RolePermissions returns the tenant's full role -> permission code
	// mapping as one snapshot, suitable for per-tenant caching.
	RolePermissions(ctx context.Context, tenantID int64) (map[int64][]string, error)
}
