package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"

	"github.com/weeklyreport/weeklyreport/internal/report"
)

// Options wires the router.
type Options struct {
	Engine  Engine
	Format  report.Formatter
	Version string

	// MCP is mounted at /mcp and Metrics at /metrics when non-nil.
	MCP     http.Handler
	Metrics http.Handler

	// Auth guards every route except /api/v1/health. Nil allows all.
	Auth func(http.Handler) http.Handler

	// CORSOrigins enables CORS for the listed browser origins.
	CORSOrigins []string

	// Logger enables one access log line per request.
	Logger *httplog.Logger
}

// NewRouter builds the HTTP router.
func NewRouter(o Options) *chi.Mux {
	h := &Handler{engine: o.Engine, format: o.Format, version: o.Version}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if o.Logger != nil {
		r.Use(httplog.RequestLogger(o.Logger))
	}
	r.Use(middleware.Recoverer)
	if len(o.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: o.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"*"},
			MaxAge:         300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonErr(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/api/v1/health", h.health)

	r.Group(func(r chi.Router) {
		if o.Auth != nil {
			r.Use(o.Auth)
		}
		r.Get("/api/v1/status", h.status)
		r.Get("/api/v1/stats", h.stats)
		r.Get("/api/v1/members", h.listMembers)
		r.Get("/api/v1/members/{name}", h.getMember)

		if o.MCP != nil {
			r.Handle("/mcp", o.MCP)
		}
		if o.Metrics != nil {
			r.Method(http.MethodGet, "/metrics", o.Metrics)
		}
	})

	return r
}
