package audit

import (
	"time"

	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

// Actions recorded by the engine.
const (
	ActionScopesReplace       = "scopes.replace"
	ActionAccessDenied        = "access.denied"
	ActionGroupCreate         = "org.group.create"
	ActionLegalEntityCreate   = "org.legalentity.create"
	ActionOperatingUnitCreate = "org.operatingunit.create"
	ActionCariAccountCreate   = "cari.account.create"
	ActionTokenIssued         = "auth.token.issued"
)

// Entry is one immutable, append-only audit record. Entries are written
// synchronously with the action they describe and are never mutated or
// deleted through this package; retention is someone else's concern.
type Entry struct {
	ID           int64          `json:"id"`
	TenantID     int64          `json:"tenant_id"`
	ActorUserID  int64          `json:"actor_user_id"`
	TargetUserID int64          `json:"target_user_id,omitempty"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id,omitempty"`
	ScopeType    scope.Type     `json:"scope_type,omitempty"`
	ScopeID      int64          `json:"scope_id,omitempty"`
	RequestID    string         `json:"request_id,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	Payload      map[string]any `json:"payload,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Filter narrows an audit listing. When ScopeType is set, ScopeID is
// mandatory. Zero values mean "no filter".
type Filter struct {
	Page         int
	PageSize     int
	ScopeType    scope.Type
	ScopeID      int64
	ActorUserID  int64
	TargetUserID int64
	Action       string
	ResourceType string
	CreatedFrom  time.Time
	CreatedTo    time.Time
}

// Page is one page of audit entries ordered by (created_at desc, id desc).
type Page struct {
	Items      []Entry `json:"items"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
}
