package httpapi

import (
	"net/http"
	"strings"

	"github.com/mrcaglayan/my-appv2-sub015/internal/auth"
	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

type replaceScopesRequest struct {
	Grants []scope.GrantInput `json:"grants"`
}

type scopesResponse struct {
	UserID int64         `json:"user_id"`
	Items  []scope.Grant `json:"items"`
}

func (a *API) handleUserScopes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	path = strings.Trim(path, "/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[1] != "scopes" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	userID, err := parseID(parts[0])
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodPut:
		a.replaceUserScopes(w, r, userID)
	case http.MethodGet:
		a.getUserScopes(w, r, userID)
	default:
		methodNotAllowed(w, r, http.MethodPut, http.MethodGet)
	}
}

// replaceUserScopes swaps the target user's grant set for the posted one.
// The whole set is replaced, never merged; the store appends the audit row in
// the same transaction.
func (a *API) replaceUserScopes(w http.ResponseWriter, r *http.Request, userID int64) {
	principal, ok := a.principalFor(w, r, auth.PermScopeManage)
	if !ok {
		return
	}

	var req replaceScopesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := scope.ValidateGrantSet(req.Grants); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	items, err := a.grants.ReplaceGrants(r.Context(), principal.User.TenantID, userID, req.Grants)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if items == nil {
		items = []scope.Grant{}
	}
	writeJSON(w, http.StatusOK, scopesResponse{UserID: userID, Items: items})
}

func (a *API) getUserScopes(w http.ResponseWriter, r *http.Request, userID int64) {
	principal, ok := a.principalFor(w, r, auth.PermScopeManage)
	if !ok {
		return
	}

	// Confirm the target exists inside the caller's tenant before listing.
	if _, err := a.users.FindUser(r.Context(), principal.User.TenantID, userID); err != nil {
		handleDomainError(w, r, err)
		return
	}

	items, err := a.grants.Grants(r.Context(), principal.User.TenantID, userID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if items == nil {
		items = []scope.Grant{}
	}
	writeJSON(w, http.StatusOK, scopesResponse{UserID: userID, Items: items})
}
