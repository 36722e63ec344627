package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domuser "example.com/user-admin/internal/domain/user"
	"example.com/user-admin/internal/infra/security"
	useruc "example.com/user-admin/internal/usecase/user"
)

// TokenParser verifies bearer tokens on mutating routes.
type TokenParser interface {
	ParseToken(token string) (*security.Claims, error)
}

type API struct {
	userSvc   *useruc.Service
	tokenSvc  TokenParser
	delay     time.Duration
	logger    *slog.Logger
	metrics   *metrics
}

type Dependencies struct {
	UserService *useruc.Service
	// TokenService is optional; without it every route is open.
	TokenService TokenParser
	// Delay is applied before every request is handled.
	Delay    time.Duration
	Logger   *slog.Logger
	Registry *prometheus.Registry
}

func NewAPI(deps Dependencies) *API {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return &API{
		userSvc:   deps.UserService,
		tokenSvc:  deps.TokenService,
		delay:     deps.Delay,
		logger:    logger,
		metrics:   newMetrics(registry),
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(a.accessLog)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(a.metrics.registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(a.metrics.middleware)
		r.Use(a.delayMiddleware)
		r.Use(chimw.AllowContentType("application/json"))

		r.Route("/users", func(rr chi.Router) {
			rr.Get("/", a.handleListUsers)
			rr.Get("/{id}", a.handleGetUser)

			rr.Group(func(mr chi.Router) {
				mr.Use(a.authMiddleware)
				mr.Post("/", a.handleCreateUser)
				mr.Patch("/{id}", a.handleUpdateUser)
				mr.Delete("/{id}", a.handleDeleteUser)
			})
		})
	})

	return r
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	idStr := chi.URLParam(r, key)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

var errInvalidID = errors.New("id must be a positive integer")

func (a *API) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domuser.ErrInvalidRole):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, domuser.ErrEmailAlreadyUsed):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, domuser.ErrNameRequired), errors.Is(err, domuser.ErrInvalidEmail):
		respondError(w, http.StatusBadRequest, err)
	case errors.Is(err, domuser.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err)
	default:
		a.logger.Error("store request failed", "error", err)
		respondError(w, http.StatusInternalServerError, errors.New("internal server error"))
	}
}
