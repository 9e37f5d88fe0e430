package scope

import "context"

// GrantStore persists per-user scope assignments.
type GrantStore interface {
	// ReplaceGrants atomically deletes every existing grant for the user and
	// installs the given list as the new complete set. Partial failure leaves
	// the prior set intact. The replacement and its audit record belong to the
	// same transaction. Returns the new effective set.
	ReplaceGrants(ctx context.Context, tenantID, userID int64, grants []GrantInput) ([]Grant, error)

	// Grants loads the user's current grant set. Read path, no side effects.
	Grants(ctx context.Context, tenantID, userID int64) ([]Grant, error)
}
