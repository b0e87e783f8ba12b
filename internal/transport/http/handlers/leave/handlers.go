package leavehandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrledger/internal/domain/auth"
	"hrledger/internal/domain/employee"
	"hrledger/internal/domain/leave"
	"hrledger/internal/transport/http/api"
	"hrledger/internal/transport/http/middleware"
	"hrledger/internal/transport/http/shared"
)

type Handler struct {
	Service   *leave.Service
	Employees *employee.Service
}

func NewHandler(service *leave.Service, employees *employee.Service) *Handler {
	return &Handler{Service: service, Employees: employees}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/requests", h.handleCreateRequest)
		r.With(middleware.RequireApprover).Get("/requests/pending", h.handleListPending)
		r.Get("/requests/{requestID}", h.handleGetRequest)
		r.With(middleware.RequireApprover).Post("/requests/{requestID}/approve", h.handleApproveRequest)
		r.With(middleware.RequireApprover).Post("/requests/{requestID}/reject", h.handleRejectRequest)
		r.Delete("/requests/{requestID}", h.handleDeleteRequest)
		r.Get("/employees/{employeeID}/requests", h.handleListByEmployee)
	})
}

type createRequestPayload struct {
	EmployeeID string `json:"employeeId"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	LeaveType  string `json:"leaveType"`
	Reason     string `json:"reason"`
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	// Plain employees file requests against their own record only.
	if payload.EmployeeID == "" || !auth.IsApproverRole(user.Role) {
		own, err := h.Employees.GetByUserID(r.Context(), user.UserID)
		if err != nil {
			api.Fail(w, http.StatusForbidden, "forbidden", "no employee record linked to this account", reqID)
			return
		}
		if payload.EmployeeID != "" && payload.EmployeeID != own.ID {
			api.Fail(w, http.StatusForbidden, "forbidden", "cannot file leave for another employee", reqID)
			return
		}
		payload.EmployeeID = own.ID
	}

	v := shared.NewValidator()
	v.Required("reason", payload.Reason, "is required")
	v.Enum("leaveType", payload.LeaveType, []string{
		leave.TypeAnnual, leave.TypeSick, leave.TypeUnpaid,
		leave.TypeEmergency, leave.TypeMaternity, leave.TypePaternity,
	}, "unknown leave type")
	start, startOK := v.Date("startDate", payload.StartDate)
	end, endOK := v.Date("endDate", payload.EndDate)
	if startOK && endOK {
		v.DateOrder("startDate", start, "endDate", end)
	}
	if v.Reject(w, reqID) {
		return
	}

	created, err := h.Service.Create(r.Context(), leave.CreateInput{
		EmployeeID: payload.EmployeeID,
		StartDate:  start,
		EndDate:    end,
		LeaveType:  payload.LeaveType,
		Reason:     payload.Reason,
		ActorID:    user.UserID,
	})
	if err != nil {
		h.failLeaveError(w, err, reqID)
		return
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	requests, err := h.Service.ListPending(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list pending requests", reqID)
		return
	}
	api.Success(w, requests, reqID)
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	req, err := h.Service.Get(r.Context(), chi.URLParam(r, "requestID"))
	if errors.Is(err, leave.ErrRequestNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_get_failed", "failed to load leave request", reqID)
		return
	}
	if !h.canViewEmployee(r, user, req.EmployeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view this leave request", reqID)
		return
	}
	api.Success(w, req, reqID)
}

type decisionPayload struct {
	Comments string `json:"comments"`
}

func (h *Handler) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, leave.StatusApproved)
}

func (h *Handler) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, leave.StatusRejected)
}

func (h *Handler) handleDecision(w http.ResponseWriter, r *http.Request, status string) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload decisionPayload
	if r.Body != nil {
		// Empty body means a decision without comments.
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	requestID := chi.URLParam(r, "requestID")
	var (
		req leave.Request
		err error
	)
	if status == leave.StatusApproved {
		req, err = h.Service.Approve(r.Context(), requestID, user.UserID, payload.Comments)
	} else {
		req, err = h.Service.Reject(r.Context(), requestID, user.UserID, payload.Comments)
	}
	if errors.Is(err, leave.ErrRequestNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_decision_failed", "failed to process decision", reqID)
		return
	}
	api.Success(w, req, reqID)
}

func (h *Handler) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	err := h.Service.Delete(r.Context(), chi.URLParam(r, "requestID"))
	if errors.Is(err, leave.ErrNotImplemented) {
		api.Fail(w, http.StatusNotImplemented, "not_implemented", "leave request deletion is not supported", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_delete_failed", "failed to delete leave request", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) handleListByEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	if !h.canViewEmployee(r, user, employeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view this employee's requests", reqID)
		return
	}

	requests, err := h.Service.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list leave requests", reqID)
		return
	}
	api.Success(w, requests, reqID)
}

func (h *Handler) canViewEmployee(r *http.Request, user auth.UserContext, employeeID string) bool {
	if auth.IsApproverRole(user.Role) {
		return true
	}
	own, err := h.Employees.GetByUserID(r.Context(), user.UserID)
	return err == nil && own.ID == employeeID
}

func (h *Handler) failLeaveError(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, leave.ErrInvalidRange):
		api.Fail(w, http.StatusBadRequest, "invalid_range", "end date must be on or after start date", reqID)
	case errors.Is(err, leave.ErrInvalidReason):
		api.Fail(w, http.StatusBadRequest, "invalid_reason", "reason is required and limited to 500 characters", reqID)
	case errors.Is(err, leave.ErrInsufficientBalance):
		api.Fail(w, http.StatusUnprocessableEntity, "insufficient_balance", "not enough annual leave balance", reqID)
	case errors.Is(err, leave.ErrOverlappingRequest):
		api.Fail(w, http.StatusConflict, "overlapping_request", "an active request already covers part of this range", reqID)
	case errors.Is(err, employee.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "leave_create_failed", "failed to create leave request", reqID)
	}
}
