package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	hrAuth "github.com/MrEthical07/hrAuth"
	"github.com/MrEthical07/hrAuth/middleware"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 64 << 10

// Options configures [New].
type Options struct {
	Logger zerolog.Logger
	// Metrics is mounted at GET /metrics when non-nil.
	Metrics http.Handler
	// Ping backs GET /api/health. A nil Ping always reports healthy.
	Ping func(ctx context.Context) error
	// TrustProxyHeaders takes the client IP from X-Forwarded-For / X-Real-IP.
	TrustProxyHeaders bool
}

type server struct {
	engine *hrAuth.Engine
	logger zerolog.Logger
	ping   func(ctx context.Context) error
}

// New returns the API handler for engine.
func New(engine *hrAuth.Engine, opts Options) http.Handler {
	s := &server{engine: engine, logger: opts.Logger, ping: opts.Ping}

	authed := func(h http.HandlerFunc) http.Handler {
		return chain(h, middleware.Guard(engine))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return chain(h,
			middleware.Guard(engine),
			middleware.RequireRole(hrAuth.RoleAdmin),
			middleware.RequirePasswordCurrent(engine),
		)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.health)
	mux.HandleFunc("POST /api/auth/admin/signup", s.signup)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("POST /api/auth/refresh", s.refresh)
	mux.Handle("POST /api/auth/change-password", authed(s.changePassword))
	mux.Handle("GET /api/auth/me", authed(s.me))
	mux.Handle("POST /api/admin/employees", admin(s.createEmployee))
	mux.Handle("GET /api/admin/employees", admin(s.listEmployees))
	mux.Handle("PATCH /api/admin/employees/{id}/status", admin(s.setEmployeeStatus))
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	return chain(mux, accessLog(opts.Logger), withClientIP(opts.TrustProxyHeaders))
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)
	if e.status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, e.status, envelope{Message: e.message, Error: e.code})
}

func (s *server) badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, envelope{Message: message, Error: "invalid_request"})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Malformed JSON body", Error: "invalid_request"})
		return false
	}
	return true
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			s.logger.Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
