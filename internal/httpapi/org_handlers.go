package httpapi

import (
	"fmt"
	"net/http"

	"github.com/mrcaglayan/my-appv2-sub015/internal/auth"
	"github.com/mrcaglayan/my-appv2-sub015/internal/org"
	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

type createGroupRequest struct {
	Name          string `json:"name"`
	ParentGroupID int64  `json:"parent_group_id"`
}

type createLegalEntityRequest struct {
	GroupID   int64  `json:"group_id"`
	CountryID int64  `json:"country_id"`
	Name      string `json:"name"`
	TaxNumber string `json:"tax_number"`
}

type createOperatingUnitRequest struct {
	LegalEntityID int64  `json:"legal_entity_id"`
	Name          string `json:"name"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

// scopeContext resolves the caller's dimensional context. It is rebuilt from
// the grant store on every request; nothing is carried over between requests.
func (a *API) scopeContext(w http.ResponseWriter, r *http.Request, principal auth.Principal) (scope.Context, bool) {
	sc, err := a.resolver.Resolve(r.Context(), principal.User.TenantID, principal.User.ID)
	if err != nil {
		handleDomainError(w, r, err)
		return scope.Context{}, false
	}
	return sc, true
}

func actorOf(principal auth.Principal) org.Actor {
	return org.Actor{TenantID: principal.User.TenantID, UserID: principal.User.ID}
}

func (a *API) handleGroups(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createGroup(w, r)
	case http.MethodGet:
		a.listGroups(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) createGroup(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.principalFor(w, r, auth.PermGroupManage)
	if !ok {
		return
	}
	var req createGroupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	sc, ok := a.scopeContext(w, r, principal)
	if !ok {
		return
	}
	group, err := a.orgSvc.CreateGroup(r.Context(), actorOf(principal), sc, org.CreateGroupInput{
		Name:          req.Name,
		ParentGroupID: req.ParentGroupID,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/v1/groups/%d", group.ID))
	writeJSON(w, http.StatusCreated, group)
}

func (a *API) listGroups(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.principalFor(w, r, auth.PermOrgRead)
	if !ok {
		return
	}
	sc, ok := a.scopeContext(w, r, principal)
	if !ok {
		return
	}
	items, err := a.orgSvc.ListGroups(r.Context(), actorOf(principal), sc)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[org.Group]{Items: items})
}

func (a *API) handleLegalEntities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createLegalEntity(w, r)
	case http.MethodGet:
		a.listLegalEntities(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) createLegalEntity(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.principalFor(w, r, auth.PermLegalEntityManage)
	if !ok {
		return
	}
	var req createLegalEntityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	sc, ok := a.scopeContext(w, r, principal)
	if !ok {
		return
	}
	le, err := a.orgSvc.CreateLegalEntity(r.Context(), actorOf(principal), sc, org.CreateLegalEntityInput{
		GroupID:   req.GroupID,
		CountryID: req.CountryID,
		Name:      req.Name,
		TaxNumber: req.TaxNumber,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/v1/legal-entities/%d", le.ID))
	writeJSON(w, http.StatusCreated, le)
}

func (a *API) listLegalEntities(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.principalFor(w, r, auth.PermOrgRead)
	if !ok {
		return
	}
	sc, ok := a.scopeContext(w, r, principal)
	if !ok {
		return
	}
	items, err := a.orgSvc.ListLegalEntities(r.Context(), actorOf(principal), sc)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[org.LegalEntity]{Items: items})
}

func (a *API) handleOperatingUnits(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createOperatingUnit(w, r)
	case http.MethodGet:
		a.listOperatingUnits(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) createOperatingUnit(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.principalFor(w, r, auth.PermOperatingUnitManage)
	if !ok {
		return
	}
	var req createOperatingUnitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	sc, ok := a.scopeContext(w, r, principal)
	if !ok {
		return
	}
	ou, err := a.orgSvc.CreateOperatingUnit(r.Context(), actorOf(principal), sc, org.CreateOperatingUnitInput{
		LegalEntityID: req.LegalEntityID,
		Name:          req.Name,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/v1/operating-units/%d", ou.ID))
	writeJSON(w, http.StatusCreated, ou)
}

// listOperatingUnits serves both the plain visibility listing and the
// parameterized form (?legal_entity_id=N), which demands a grant at legal
// entity level or broader.
func (a *API) listOperatingUnits(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.principalFor(w, r, auth.PermOrgRead)
	if !ok {
		return
	}
	legalEntityID, err := queryID(r, "legal_entity_id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	sc, ok := a.scopeContext(w, r, principal)
	if !ok {
		return
	}
	items, err := a.orgSvc.ListOperatingUnits(r.Context(), actorOf(principal), sc, legalEntityID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[org.OperatingUnit]{Items: items})
}
