package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                              "/",
		"/metrics":                      "/metrics",
		"/v1/users/42/scopes":           "/v1/users/:id/scopes",
		"/v1/users/42/scopes?page=2":    "/v1/users/:id/scopes",
		"/v1/cari-accounts/01HZX3":      "/v1/cari-accounts/:id",
		"/v1/cari-accounts":             "/v1/cari-accounts",
		"/v1/audit-logs":                "/v1/audit-logs",
		"/v1/audit-logs?page=3":         "/v1/audit-logs",
		"/v1/users/42/scopes/extra":     "/v1/users/42/scopes/extra",
		"/v1/operating-units":           "/v1/operating-units",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
