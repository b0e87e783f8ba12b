package employeeshandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrledger/internal/domain/auth"
	"hrledger/internal/domain/employee"
	"hrledger/internal/domain/leave"
	"hrledger/internal/transport/http/api"
	"hrledger/internal/transport/http/middleware"
	"hrledger/internal/transport/http/shared"
)

type Handler struct {
	Service *employee.Service
	Leave   *leave.Service
}

func NewHandler(service *employee.Service, leaveSvc *leave.Service) *Handler {
	return &Handler{Service: service, Leave: leaveSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/{employeeID}", h.handleGet)
		r.Get("/{employeeID}/leave-balance", h.handleLeaveBalance)
		r.With(middleware.RequireApprover).Post("/", h.handleCreate)
		r.With(middleware.RequireApprover).Put("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequireAdmin).Delete("/{employeeID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employees, err := h.Service.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_list_failed", "failed to list employees", reqID)
		return
	}
	api.Success(w, employees, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	emp, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", reqID)
		return
	}
	api.Success(w, emp, reqID)
}

// handleLeaveBalance serves the projected balance: the official balance minus
// days held by pending annual requests.
func (h *Handler) handleLeaveBalance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	balance, err := h.Leave.RemainingBalance(r.Context(), employeeID)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "balance_failed", "failed to compute leave balance", reqID)
		return
	}
	api.Success(w, map[string]any{"employeeId": employeeID, "remainingBalance": balance}, reqID)
}

// employeePayload uses pointers where absence and zero differ: a zero leave
// balance is a real entitlement, and an update omitting salary means
// "unchanged".
type employeePayload struct {
	UserID       string   `json:"userId"`
	Name         string   `json:"name"`
	Department   string   `json:"department"`
	Position     string   `json:"position"`
	Salary       *float64 `json:"salary"`
	Role         string   `json:"role"`
	LeaveBalance *int     `json:"leaveBalance"`
	HireDate     string   `json:"hireDate"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Required("department", payload.Department, "is required")
	salary := 0.0
	if payload.Salary != nil {
		salary = *payload.Salary
		if salary < 0 {
			v.Add("salary", "must not be negative")
		}
	}
	balance := employee.DefaultLeaveBalance
	if payload.LeaveBalance != nil {
		balance = *payload.LeaveBalance
		if balance < 0 {
			v.Add("leaveBalance", "must not be negative")
		}
	}
	v.Enum("role", payload.Role, []string{auth.RoleEmployee, auth.RoleManager, auth.RoleHR, auth.RoleAdmin}, "unknown role")
	var hireDate time.Time
	if payload.HireDate != "" {
		parsed, ok := v.Date("hireDate", payload.HireDate)
		if ok {
			hireDate = parsed
		}
	}
	if v.Reject(w, reqID) {
		return
	}

	emp, err := h.Service.Create(r.Context(), employee.Employee{
		UserID:       payload.UserID,
		Name:         payload.Name,
		Department:   payload.Department,
		Position:     payload.Position,
		Salary:       salary,
		Role:         payload.Role,
		LeaveBalance: balance,
		HireDate:     hireDate,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", reqID)
		return
	}
	api.Created(w, emp, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	// Omitted fields stay as stored; the service merges against the
	// current record.
	v := shared.NewValidator()
	salary := -1.0
	if payload.Salary != nil {
		salary = *payload.Salary
		if salary < 0 {
			v.Add("salary", "must not be negative")
		}
	}
	v.Enum("role", payload.Role, []string{auth.RoleEmployee, auth.RoleManager, auth.RoleHR, auth.RoleAdmin}, "unknown role")
	if v.Reject(w, reqID) {
		return
	}

	emp, err := h.Service.Update(r.Context(), employee.Employee{
		ID:         chi.URLParam(r, "employeeID"),
		Name:       payload.Name,
		Department: payload.Department,
		Position:   payload.Position,
		Salary:     salary,
		Role:       payload.Role,
	})
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", reqID)
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	err := h.Service.Delete(r.Context(), chi.URLParam(r, "employeeID"))
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_delete_failed", "failed to delete employee", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}
