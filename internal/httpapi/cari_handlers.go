package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mrcaglayan/my-appv2-sub015/internal/auth"
	"github.com/mrcaglayan/my-appv2-sub015/internal/cari"
)

type createCariAccountRequest struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	Currency        string `json:"currency"`
	LegalEntityID   int64  `json:"legal_entity_id"`
	OperatingUnitID int64  `json:"operating_unit_id"`
}

func cariActorOf(principal auth.Principal) cari.Actor {
	return cari.Actor{TenantID: principal.User.TenantID, UserID: principal.User.ID}
}

func (a *API) handleCariAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createCariAccount(w, r)
	case http.MethodGet:
		a.listCariAccounts(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) createCariAccount(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.principalFor(w, r, auth.PermCariManage)
	if !ok {
		return
	}
	var req createCariAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	sc, ok := a.scopeContext(w, r, principal)
	if !ok {
		return
	}
	account, err := a.cariSvc.CreateAccount(r.Context(), cariActorOf(principal), sc, cari.CreateAccountInput{
		Code:            req.Code,
		Name:            req.Name,
		Currency:        req.Currency,
		LegalEntityID:   req.LegalEntityID,
		OperatingUnitID: req.OperatingUnitID,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/v1/cari-accounts/%s", account.ID))
	writeJSON(w, http.StatusCreated, account)
}

func (a *API) listCariAccounts(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.principalFor(w, r, auth.PermCariRead)
	if !ok {
		return
	}
	sc, ok := a.scopeContext(w, r, principal)
	if !ok {
		return
	}
	items, err := a.cariSvc.ListAccounts(r.Context(), cariActorOf(principal), sc)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[cari.Account]{Items: items})
}

func (a *API) handleCariAccountResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/cari-accounts/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	principal, ok := a.principalFor(w, r, auth.PermCariRead)
	if !ok {
		return
	}
	sc, ok := a.scopeContext(w, r, principal)
	if !ok {
		return
	}
	account, err := a.cariSvc.GetAccount(r.Context(), cariActorOf(principal), sc, id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}
