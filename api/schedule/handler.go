// Package schedule exposes the scheduler over HTTP.
package schedule

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kilianp07/a100/core/logger"
	"github.com/kilianp07/a100/core/model"
	"github.com/kilianp07/a100/core/report"
	"github.com/kilianp07/a100/core/scheduler"
	"github.com/kilianp07/a100/core/solvelog"
)

// maxBodyBytes bounds the size of a problem document.
const maxBodyBytes = 1 << 20

// Solver computes schedules.
type Solver interface {
	MakeSchedule(ctx context.Context, p model.Problem) (scheduler.Result, error)
}

// Response is the body of a successful POST /api/v1/schedule.
type Response struct {
	RunID       string               `json:"run_id"`
	Status      string               `json:"status"`
	Backend     string               `json:"backend"`
	Objective   int64                `json:"objective"`
	WallTime    float64              `json:"wall_time_s"`
	Branches    int64                `json:"branches"`
	Items       []report.Entry       `json:"items"`
	Workload    report.Workload      `json:"workload"`
	Utilization []report.Utilization `json:"utilization"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	RunID  string `json:"run_id,omitempty"`
	Status string `json:"status,omitempty"`
}

// NewRouter mounts the schedule API. The log endpoint is only served when
// store is non-nil. Requests under /api must include an Authorization header
// with "Bearer <token>" when token is non-empty.
func NewRouter(s Solver, store solvelog.LogStore, token string, log logger.Logger) chi.Router {
	if log == nil {
		log = logger.NopLogger{}
	}
	h := &handler{solver: s, store: store, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api/v1/schedule", func(api chi.Router) {
		api.Use(BearerAuth(token))
		api.Post("/", h.solve)
		if store != nil {
			api.Get("/logs", h.logs)
		}
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
	})
	return r
}

// BearerAuth rejects requests without the expected bearer token. An empty
// token disables the check.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		want := []byte("Bearer " + token)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), want) != 1 {
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type handler struct {
	solver Solver
	store  solvelog.LogStore
	log    logger.Logger
}

func (h *handler) solve(w http.ResponseWriter, r *http.Request) {
	format := "json"
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = "yaml"
	}
	p, err := scheduler.DecodeProblem(http.MaxBytesReader(w, r.Body, maxBodyBytes), format)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "decode problem: " + err.Error()})
		return
	}

	res, err := h.solver.MakeSchedule(r.Context(), p)
	if err != nil {
		code, body := errorResponse(err)
		body.RunID = res.RunID
		if code == http.StatusInternalServerError {
			h.log.Errorf("solve %s: %v", res.RunID, err)
		}
		writeJSON(w, code, body)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		RunID:       res.RunID,
		Status:      res.Status.String(),
		Backend:     res.Backend,
		Objective:   res.Objective,
		WallTime:    res.WallTime.Seconds(),
		Branches:    res.Branches,
		Items:       report.Entries(p, res.Items),
		Workload:    report.ComputeWorkload(p, res.Items),
		Utilization: report.ComputeUtilization(p, res.Items),
	})
}

// errorResponse maps a MakeSchedule error to its HTTP status.
func errorResponse(err error) (int, ErrorResponse) {
	body := ErrorResponse{Error: err.Error()}
	var verr *model.ValidationError
	var nerr *scheduler.NoScheduleError
	if errors.As(err, &nerr) {
		body.Status = nerr.Status.String()
	}
	switch {
	case errors.As(err, &verr):
		body.Field = verr.Field
		return http.StatusBadRequest, body
	case errors.Is(err, scheduler.ErrInfeasible):
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, scheduler.ErrInconclusive):
		return http.StatusServiceUnavailable, body
	default:
		return http.StatusInternalServerError, body
	}
}

func (h *handler) logs(w http.ResponseWriter, r *http.Request) {
	q := solvelog.LogQuery{
		Status: r.URL.Query().Get("status"),
		RunID:  r.URL.Query().Get("run_id"),
	}
	for key, dst := range map[string]*time.Time{"start": &q.Start, "end": &q.End} {
		s := r.URL.Query().Get(key)
		if s == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid " + key + ": " + err.Error(), Field: key})
			return
		}
		*dst = t
	}
	records, err := h.store.Query(r.Context(), q)
	if err != nil {
		h.log.Errorf("query solve log: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if records == nil {
		records = []solvelog.LogRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
