package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mrcaglayan/my-appv2-sub015/internal/audit"
	"github.com/mrcaglayan/my-appv2-sub015/internal/auth"
)

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

const tokenTTL = 15 * time.Minute

func (a *API) handleAuthToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := a.users.FindUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "authentication error")
		return
	}
	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if user.Status != auth.UserStatusActive {
		writeError(w, r, http.StatusForbidden, "account disabled")
		return
	}

	token, err := auth.GenerateToken(user.TenantID, user.ID, tokenTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token generation failed")
		return
	}

	expiresAt := time.Now().UTC().Add(tokenTTL)
	_ = a.auditSvc.Record(r.Context(), &audit.Entry{
		TenantID:     user.TenantID,
		ActorUserID:  user.ID,
		Action:       audit.ActionTokenIssued,
		ResourceType: "user",
		IPAddress:    clientIP(r),
		UserAgent:    r.UserAgent(),
		Payload: map[string]any{
			"expires_at": expiresAt.Format(time.RFC3339),
		},
	})

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
