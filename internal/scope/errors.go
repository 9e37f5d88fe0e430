package scope

import "errors"

var (
	// ErrInvalidInput marks malformed grant or filter input. Nothing happened;
	// callers map it to a client error.
	ErrInvalidInput = errors.New("scope: invalid input")
	// ErrNotFound marks a user/tenant reference that does not resolve inside
	// the caller's tenant. Cross-tenant references surface as this, never as a
	// hint that the resource exists elsewhere.
	ErrNotFound = errors.New("scope: not found")
	// ErrForbidden marks a denied authorization decision. It is an expected
	// negative result, not a system fault, and is distinct from ErrNotFound.
	ErrForbidden = errors.New("scope: forbidden")
)
