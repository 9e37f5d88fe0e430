package scope

// Context is a user's aggregated authorization context for one request.
// It is derived from the current grant set, held in memory only, and must be
// discarded when the request finishes: grants can change between requests.
type Context struct {
	TenantWide     bool
	Groups         map[int64]struct{}
	Countries      map[int64]struct{}
	LegalEntities  map[int64]struct{}
	OperatingUnits map[int64]struct{}
}

// NewContext returns an empty context. An empty context authorizes nothing.
func NewContext() Context {
	return Context{
		Groups:         make(map[int64]struct{}),
		Countries:      make(map[int64]struct{}),
		LegalEntities:  make(map[int64]struct{}),
		OperatingUnits: make(map[int64]struct{}),
	}
}

// Empty reports whether the context carries no authority at all.
func (c Context) Empty() bool {
	return !c.TenantWide &&
		len(c.Groups) == 0 &&
		len(c.Countries) == 0 &&
		len(c.LegalEntities) == 0 &&
		len(c.OperatingUnits) == 0
}

// set returns the id set backing a dimension, nil for TENANT.
func (c Context) set(t Type) map[int64]struct{} {
	switch t {
	case TypeGroup:
		return c.Groups
	case TypeCountry:
		return c.Countries
	case TypeLegalEntity:
		return c.LegalEntities
	case TypeOperatingUnit:
		return c.OperatingUnits
	}
	return nil
}

// Contains reports whether the context covers the given dimension id.
// A tenant-wide context covers everything within the tenant.
func (c Context) Contains(t Type, id int64) bool {
	if c.TenantWide {
		return true
	}
	if t == TypeTenant {
		return false
	}
	set := c.set(t)
	if set == nil {
		return false
	}
	_, ok := set[id]
	return ok
}

// Fold builds a context from a grant set. ALLOW adds the id to the matching
// dimension set; DENY removes it. A deny is sticky: once an identity is denied
// while folding one set, a later ALLOW for the same identity does not
// resurrect it. A TENANT ALLOW not countered by a TENANT DENY yields a
// tenant-wide context; the narrower sets are still populated, but every
// downstream check short-circuits on TenantWide.
func Fold(grants []Grant) Context {
	c := NewContext()
	denied := make(map[Type]map[int64]struct{})
	tenantAllow, tenantDeny := false, false

	for _, g := range grants {
		if g.Type == TypeTenant {
			switch g.Effect {
			case EffectAllow:
				tenantAllow = true
			case EffectDeny:
				tenantDeny = true
			}
			continue
		}
		set := c.set(g.Type)
		if set == nil {
			continue
		}
		switch g.Effect {
		case EffectAllow:
			if d, ok := denied[g.Type]; ok {
				if _, blocked := d[g.ScopeID]; blocked {
					continue
				}
			}
			set[g.ScopeID] = struct{}{}
		case EffectDeny:
			delete(set, g.ScopeID)
			if denied[g.Type] == nil {
				denied[g.Type] = make(map[int64]struct{})
			}
			denied[g.Type][g.ScopeID] = struct{}{}
		}
	}

	c.TenantWide = tenantAllow && !tenantDeny
	return c
}
