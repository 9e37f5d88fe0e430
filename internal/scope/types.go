package scope

import "fmt"

// Type identifies one axis of the organizational dimension hierarchy.
// TENANT is the broadest; OPERATING_UNIT is the narrowest. COUNTRY is an
// orthogonal classifier of a legal entity but participates in scoping as an
// independent dimension.
type Type string

const (
	TypeTenant        Type = "TENANT"
	TypeGroup         Type = "GROUP"
	TypeCountry       Type = "COUNTRY"
	TypeLegalEntity   Type = "LEGAL_ENTITY"
	TypeOperatingUnit Type = "OPERATING_UNIT"
)

// Types lists every recognized scope type, broadest first.
var Types = []Type{TypeTenant, TypeGroup, TypeCountry, TypeLegalEntity, TypeOperatingUnit}

// ParseType normalizes and validates a scope type string.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown scope type %q", ErrInvalidInput, s)
	}
	return t, nil
}

func (t Type) Valid() bool {
	switch t {
	case TypeTenant, TypeGroup, TypeCountry, TypeLegalEntity, TypeOperatingUnit:
		return true
	}
	return false
}

// Rank orders types broadest (0) to narrowest. Used when deciding whether a
// grant at one level covers a filter request at another.
func (t Type) Rank() int {
	switch t {
	case TypeTenant:
		return 0
	case TypeGroup:
		return 1
	case TypeCountry:
		return 2
	case TypeLegalEntity:
		return 3
	case TypeOperatingUnit:
		return 4
	}
	return -1
}

// Broader reports whether t is a strictly broader dimension than other.
func (t Type) Broader(other Type) bool {
	return t.Valid() && other.Valid() && t.Rank() < other.Rank()
}

// Effect is the polarity of a grant.
type Effect string

const (
	EffectAllow Effect = "ALLOW"
	EffectDeny  Effect = "DENY"
)

func ParseEffect(s string) (Effect, error) {
	e := Effect(s)
	if e != EffectAllow && e != EffectDeny {
		return "", fmt.Errorf("%w: unknown effect %q", ErrInvalidInput, s)
	}
	return e, nil
}

// Grant is one persisted scope assignment. At most one grant exists per
// (tenant, user, type, scope id); re-granting updates the effect in place.
type Grant struct {
	TenantID  int64  `json:"tenant_id"`
	UserID    int64  `json:"user_id"`
	Type      Type   `json:"scope_type"`
	ScopeID   int64  `json:"scope_id"`
	Effect    Effect `json:"effect"`
}

// GrantInput is the caller-supplied shape for replace operations.
type GrantInput struct {
	Type    Type   `json:"scope_type"`
	ScopeID int64  `json:"scope_id"`
	Effect  Effect `json:"effect"`
}

// Validate rejects malformed grant input before it reaches storage.
func (g GrantInput) Validate() error {
	if !g.Type.Valid() {
		return fmt.Errorf("%w: unknown scope type %q", ErrInvalidInput, string(g.Type))
	}
	if g.ScopeID <= 0 {
		return fmt.Errorf("%w: scope_id must be positive, got %d", ErrInvalidInput, g.ScopeID)
	}
	if g.Effect != EffectAllow && g.Effect != EffectDeny {
		return fmt.Errorf("%w: unknown effect %q", ErrInvalidInput, string(g.Effect))
	}
	return nil
}

// ValidateGrantSet validates a full replacement set.
func ValidateGrantSet(grants []GrantInput) error {
	for i, g := range grants {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("grant %d: %w", i, err)
		}
	}
	return nil
}
