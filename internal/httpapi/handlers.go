package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mrcaglayan/my-appv2-sub015/internal/audit"
	"github.com/mrcaglayan/my-appv2-sub015/internal/auth"
	"github.com/mrcaglayan/my-appv2-sub015/internal/cari"
	"github.com/mrcaglayan/my-appv2-sub015/internal/obs"
	"github.com/mrcaglayan/my-appv2-sub015/internal/org"
	"github.com/mrcaglayan/my-appv2-sub015/internal/scope"
)

const serviceName = "backoffice-api"

// ReadyProbe checks downstream readiness (database ping).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config wires the HTTP layer to the services behind it.
type Config struct {
	ReadyProbe ReadyProbe
	Version    string
	Users      auth.Store
	Gate       *auth.Gate
	Grants     scope.GrantStore
	Audit      *audit.Service
	Org        *org.Service
	Cari       *cari.Service
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	users    auth.Store
	gate     *auth.Gate
	grants   scope.GrantStore
	resolver *scope.Resolver
	auditSvc *audit.Service
	orgSvc   *org.Service
	cariSvc  *cari.Service

	rateBurst  int
	ratePerSec int
}

func New(cfg Config) (*API, error) {
	if cfg.Users == nil || cfg.Gate == nil || cfg.Grants == nil ||
		cfg.Audit == nil || cfg.Org == nil || cfg.Cari == nil {
		return nil, errors.New("httpapi: all services are required")
	}
	resolver, err := scope.NewResolver(cfg.Grants)
	if err != nil {
		return nil, err
	}
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: cfg.ReadyProbe,
		version:    cfg.Version,
		users:      cfg.Users,
		gate:       cfg.Gate,
		grants:     cfg.Grants,
		resolver:   resolver,
		auditSvc:   cfg.Audit,
		orgSvc:     cfg.Org,
		cariSvc:    cfg.Cari,
		rateBurst:  20,
		ratePerSec: 10,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/token", a.handleAuthToken)

	a.mux.HandleFunc("/v1/users/", a.handleUserScopes)
	a.mux.HandleFunc("/v1/audit-logs", a.handleAuditLogs)

	a.mux.HandleFunc("/v1/groups", a.handleGroups)
	a.mux.HandleFunc("/v1/legal-entities", a.handleLegalEntities)
	a.mux.HandleFunc("/v1/operating-units", a.handleOperatingUnits)

	a.mux.HandleFunc("/v1/cari-accounts", a.handleCariAccounts)
	a.mux.HandleFunc("/v1/cari-accounts/", a.handleCariAccountResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a, nil
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	h := http.Handler(a.mux)
	h = a.withAuth(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": serviceName,
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    serviceName,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid, ok := audit.RequestIDFromContext(r.Context()); ok {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("identifier must be a positive integer")
	}
	return id, nil
}

func queryID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	return parseID(raw)
}

// handleDomainError maps service errors onto the HTTP taxonomy. Authorization
// denials map to 403, never 404: a denied resource is not pretended absent.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, scope.ErrInvalidInput),
		errors.Is(err, org.ErrInvalidInput),
		errors.Is(err, cari.ErrInvalidInput),
		errors.Is(err, cari.ErrInvalidCurrency),
		errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, scope.ErrForbidden),
		errors.Is(err, auth.ErrUnauthorized):
		writeError(w, r, http.StatusForbidden, "forbidden")
	case errors.Is(err, scope.ErrNotFound),
		errors.Is(err, org.ErrNotFound),
		errors.Is(err, cari.ErrNotFound),
		errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "resource not found")
	case errors.Is(err, org.ErrConflict),
		errors.Is(err, cari.ErrConflict),
		errors.Is(err, auth.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
