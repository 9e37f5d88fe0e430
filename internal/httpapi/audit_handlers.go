package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mrcaglayan/my-appv2-sub015/internal/audit"
	"github.com/mrcaglayan/my-appv2-sub015/internal/auth"
	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

// handleAuditLogs serves the audit listing. Results pass through the caller's
// own visibility context: even an auditor only sees entries for scopes they
// hold grants on.
func (a *API) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := a.principalFor(w, r, auth.PermAuditRead)
	if !ok {
		return
	}

	f, err := auditFilterFromQuery(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sc, err := a.resolver.Resolve(r.Context(), principal.User.TenantID, principal.User.ID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	page, err := a.auditSvc.List(r.Context(), principal.User.TenantID, sc, f)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func auditFilterFromQuery(r *http.Request) (audit.Filter, error) {
	var f audit.Filter
	q := r.URL.Query()

	var err error
	if f.Page, err = queryInt(q.Get("page")); err != nil {
		return audit.Filter{}, err
	}
	if f.PageSize, err = queryInt(q.Get("page_size")); err != nil {
		return audit.Filter{}, err
	}

	if raw := strings.TrimSpace(q.Get("scope_type")); raw != "" {
		t, perr := scope.ParseType(raw)
		if perr != nil {
			return audit.Filter{}, perr
		}
		f.ScopeType = t
	}
	if f.ScopeID, err = queryID(r, "scope_id"); err != nil {
		return audit.Filter{}, err
	}
	if f.ActorUserID, err = queryID(r, "actor_user_id"); err != nil {
		return audit.Filter{}, err
	}
	if f.TargetUserID, err = queryID(r, "target_user_id"); err != nil {
		return audit.Filter{}, err
	}
	f.Action = strings.TrimSpace(q.Get("action"))
	f.ResourceType = strings.TrimSpace(q.Get("resource_type"))

	if f.CreatedFrom, err = queryTime(q.Get("created_from")); err != nil {
		return audit.Filter{}, err
	}
	if f.CreatedTo, err = queryTime(q.Get("created_to")); err != nil {
		return audit.Filter{}, err
	}
	return f, nil
}

func queryInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errParam(raw)
	}
	return v, nil
}

func queryTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errParam(raw)
	}
	return t, nil
}

type paramError string

func (e paramError) Error() string { return "invalid query parameter value: " + string(e) }

func errParam(raw string) error { return paramError(raw) }
