package notificationshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrledger/internal/domain/notifications"
	"hrledger/internal/transport/http/api"
	"hrledger/internal/transport/http/middleware"
	"hrledger/internal/transport/http/shared"
)

type Handler struct {
	Service *notifications.Service
}

func NewHandler(service *notifications.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Post("/{notificationID}/read", h.handleMarkRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	page := shared.ParsePagination(r, 50, 200)
	items, err := h.Service.List(r.Context(), user.UserID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_list_failed", "failed to list notifications", reqID)
		return
	}
	api.Success(w, items, reqID)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	if err := h.Service.MarkRead(r.Context(), user.UserID, chi.URLParam(r, "notificationID")); err != nil {
		api.Fail(w, http.StatusInternalServerError, "notification_update_failed", "failed to mark notification read", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "read"}, reqID)
}
