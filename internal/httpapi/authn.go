package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mrcaglayan/my-appv2-sub015/internal/audit"
	"github.com/mrcaglayan/my-appv2-sub015/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/v1/auth/token",
	"/metrics",
	"/healthz",
	"/readyz",
	"/v1/info",
	"/",
}

func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := auth.ParseAndValidate(token)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}
		userID, err := claims.SubjectUserID()
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		principal, err := a.gate.Principal(r.Context(), claims.TenantID, userID)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrNotFound):
				writeError(w, r, http.StatusUnauthorized, "unknown user")
			default:
				writeError(w, r, http.StatusInternalServerError, "authentication error")
			}
			return
		}
		if principal.User.Status != auth.UserStatusActive {
			writeError(w, r, http.StatusForbidden, "account disabled")
			return
		}

		ctx := auth.ContextWithPrincipal(r.Context(), principal)
		ctx = audit.WithActor(ctx, principal.User.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// principalFor extracts the caller, enforcing the named permission. A missing
// principal maps to 401 at the boundary, a missing permission to 403.
func (a *API) principalFor(w http.ResponseWriter, r *http.Request, perm string) (auth.Principal, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return auth.Principal{}, false
	}
	if !principal.HasPermission(perm) {
		a.auditDenied(r, principal, perm)
		writeError(w, r, http.StatusForbidden, "forbidden")
		return auth.Principal{}, false
	}
	return principal, true
}

func (a *API) auditDenied(r *http.Request, principal auth.Principal, perm string) {
	_ = a.auditSvc.Record(r.Context(), &audit.Entry{
		TenantID:     principal.User.TenantID,
		ActorUserID:  principal.User.ID,
		Action:       audit.ActionAccessDenied,
		ResourceType: "permission",
		ResourceID:   perm,
		IPAddress:    clientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
