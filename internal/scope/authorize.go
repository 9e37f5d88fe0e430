package scope

import "fmt"

// AuthorizeWrite decides whether a mutation touching the given resource
// dimensions is allowed under the context. The check is strictly conjunctive:
// every dimension the resource declares must independently match a grant.
// Dimensions the resource does not declare are not evaluated. A resource
// declaring no dimensions at all is authorized only tenant-wide (default-deny).
//
// A false result is an expected denial, not an error; callers translate it to
// a Forbidden response.
func AuthorizeWrite(sc Context, dims map[Type]int64) bool {
	if sc.TenantWide {
		return true
	}
	if len(dims) == 0 {
		return false
	}
	for t, id := range dims {
		if !sc.Contains(t, id) {
			return false
		}
	}
	return true
}

// AuthorizeFilter decides whether the caller may narrow a listing by an
// explicit dimension id. The request is authorized only by a grant at the
// requested level or broader: tenant-wide, the requested id itself, or a
// broader-dimension grant covering one of the filter target's ancestors
// (supplied by the caller, which knows its target's lineage).
//
// Grants narrower than the requested level never satisfy the filter, even if
// every narrower resource under the target happens to be individually
// granted: the grant set does not prove completeness. That case fails with
// ErrForbidden, distinct from an empty result.
func AuthorizeFilter(sc Context, t Type, id int64, ancestors map[Type]int64) error {
	if !t.Valid() || t == TypeTenant {
		return fmt.Errorf("%w: unsupported filter dimension %q", ErrInvalidInput, string(t))
	}
	if id <= 0 {
		return fmt.Errorf("%w: filter id must be positive, got %d", ErrInvalidInput, id)
	}
	if sc.TenantWide {
		return nil
	}
	if sc.Contains(t, id) {
		return nil
	}
	for at, aid := range ancestors {
		if !at.Broader(t) {
			continue
		}
		if sc.Contains(at, aid) {
			return nil
		}
	}
	return ErrForbidden
}
