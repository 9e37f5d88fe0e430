package auth

const (
	PermScopeManage         = "security.scope.manage"
	PermAuditRead           = "security.audit.read"
	PermGroupManage         = "org.group.manage"
	PermLegalEntityManage   = "org.legalentity.manage"
	PermOperatingUnitManage = "org.operatingunit.manage"
	PermOrgRead             = "org.read"
	PermCariManage          = "cari.account.manage"
	PermCariRead            = "cari.account.read"
)

// BuiltinPermissions is the permission catalog ensured at startup.
var BuiltinPermissions = []Permission{
	{Code: PermScopeManage, Description: "Replace and inspect user scope grants"},
	{Code: PermAuditRead, Description: "Query the audit log"},
	{Code: PermGroupManage, Description: "Create and manage groups"},
	{Code: PermLegalEntityManage, Description: "Create and manage legal entities"},
	{Code: PermOperatingUnitManage, Description: "Create and manage operating units"},
	{Code: PermOrgRead, Description: "Browse the organizational hierarchy"},
	{Code: PermCariManage, Description: "Create and manage cari accounts"},
	{Code: PermCariRead, Description: "Browse cari accounts"},
}
