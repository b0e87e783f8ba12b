package systemhandler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrledger/internal/platform/jobs"
	"hrledger/internal/platform/metrics"
	"hrledger/internal/transport/http/api"
	"hrledger/internal/transport/http/middleware"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	DB      Pinger
	Metrics *metrics.Collector
	Jobs    *jobs.Service
}

func NewHandler(db Pinger, collector *metrics.Collector, jobsSvc *jobs.Service) *Handler {
	return &Handler{DB: db, Metrics: collector, Jobs: jobsSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Route("/system", func(r chi.Router) {
		r.Use(middleware.RequireAuth, middleware.RequireAdmin)
		r.Get("/metrics", h.handleMetrics)
		r.Get("/jobs", h.handleListJobs)
		r.Get("/jobs/{runID}", h.handleGetJob)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.DB.Ping(ctx); err != nil {
		api.Fail(w, http.StatusServiceUnavailable, "db_unavailable", "database unreachable", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "ok"}, reqID)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Jobs.Recent(50), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	run, ok := h.Jobs.Get(chi.URLParam(r, "runID"))
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", "job run not found", reqID)
		return
	}
	api.Success(w, run, reqID)
}
