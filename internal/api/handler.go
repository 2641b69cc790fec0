package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/weeklyreport/weeklyreport/internal/report"
)

// Engine is the query surface the handlers need. *report.Engine satisfies it.
type Engine interface {
	Missing(ctx context.Context) ([]string, error)
	Lookup(ctx context.Context, name string) (report.Lookup, error)
	Stats(ctx context.Context) (report.Stats, error)
	Members() []string
}

// Handler serves the /api/v1 routes.
type Handler struct {
	engine  Engine
	format  report.Formatter
	version string
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Members: len(h.engine.Members()),
		Version: h.version,
	})
}

// status returns GET /api/v1/status.
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	missing, err := h.engine.Missing(r.Context())
	if err != nil {
		sourceErr(w, r, err)
		return
	}
	jsonResp(w, http.StatusOK, StatusResponse{
		Missing: missing,
		Message: h.format.Missing(missing),
	})
}

// stats returns GET /api/v1/stats.
func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.engine.Stats(r.Context())
	if err != nil {
		sourceErr(w, r, err)
		return
	}
	jsonResp(w, http.StatusOK, StatsResponse{
		Total:      st.Total,
		Submitted:  st.Submitted,
		Percentage: st.Percentage,
		Message:    h.format.Stats(st),
	})
}

// listMembers returns GET /api/v1/members. It does not read the sheet.
func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	names := h.engine.Members()
	jsonResp(w, http.StatusOK, MembersResponse{
		Members: names,
		Message: h.format.Members(names),
	})
}

// getMember returns GET /api/v1/members/{name}.
func (h *Handler) getMember(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	l, err := h.engine.Lookup(r.Context(), name)
	if err != nil {
		sourceErr(w, r, err)
		return
	}
	if !l.Found {
		jsonErr(w, http.StatusNotFound, h.format.Person(l))
		return
	}

	resp := MemberResponse{
		Name:      l.Name,
		Submitted: l.Record.Submitted,
		Message:   h.format.Person(l),
	}
	if l.Record.Submitted {
		days := l.Record.DaysAgo
		resp.SubmittedAt = l.Record.DisplayTime()
		resp.DaysAgo = &days
		resp.Preview = report.Preview(l.Record.Content)
	}
	jsonResp(w, http.StatusOK, resp)
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// sourceErr answers 502 when the sheet could not be read and 500 otherwise.
func sourceErr(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, report.ErrSourceUnavailable) {
		code = http.StatusBadGateway
	}
	slog.Error("api: query failed", "path", r.URL.Path, "status", code, "err", err)
	jsonErr(w, code, err.Error())
}
