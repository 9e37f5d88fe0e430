package auth

// Principal represents an authenticated user with resolved permissions.
type Principal struct {
	User        User
	Permissions map[string]struct{}
}

// NewPrincipal constructs a principal with preloaded permissions.
func NewPrincipal(user User, permCodes []string) Principal {
	set := make(map[string]struct{}, len(permCodes))
	for _, code := range permCodes {
		set[code] = struct{}{}
	}
	return Principal{User: user, Permissions: set}
}

// HasPermission reports whether the principal holds the named capability.
// Unknown codes and empty permission sets report false.
func (p Principal) HasPermission(code string) bool {
	_, ok := p.Permissions[code]
	return ok
}
