package audithandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrledger/internal/domain/audit"
	"hrledger/internal/transport/http/api"
	"hrledger/internal/transport/http/middleware"
	"hrledger/internal/transport/http/shared"
)

type Handler struct {
	Service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequireAuth, middleware.RequireApprover)
		r.Get("/events", h.handleList)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	filter := audit.Filter{
		EntityType: r.URL.Query().Get("entityType"),
		Action:     r.URL.Query().Get("action"),
	}
	v := shared.NewValidator()
	if raw := r.URL.Query().Get("from"); raw != "" {
		if parsed, ok := v.Date("from", raw); ok {
			filter.From = parsed
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if parsed, ok := v.Date("to", raw); ok {
			filter.To = parsed
		}
	}
	if v.Reject(w, reqID) {
		return
	}

	page := shared.ParsePagination(r, 50, 500)
	events, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", reqID)
		return
	}
	api.Success(w, events, reqID)
}
