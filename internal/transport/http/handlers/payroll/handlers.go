package payrollhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hrledger/internal/domain/auth"
	"hrledger/internal/domain/employee"
	"hrledger/internal/domain/payroll"
	"hrledger/internal/platform/jobs"
	"hrledger/internal/transport/http/api"
	"hrledger/internal/transport/http/middleware"
)

type Handler struct {
	Service   *payroll.Service
	Employees *employee.Service
	Jobs      *jobs.Service
}

func NewHandler(service *payroll.Service, employees *employee.Service, jobsSvc *jobs.Service) *Handler {
	return &Handler{Service: service, Employees: employees, Jobs: jobsSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireApprover).Post("/generate", h.handleGenerate)
		r.With(middleware.RequireApprover).Post("/generate-batch", h.handleGenerateBatch)
		r.With(middleware.RequireApprover).Get("/period/{year}/{month}", h.handleListByPeriod)
		r.Get("/{payrollID}", h.handleGet)
		r.Get("/{payrollID}/payslip.pdf", h.handlePayslip)
		r.Get("/employees/{employeeID}", h.handleListByEmployee)
	})
}

type generatePayload struct {
	EmployeeID string `json:"employeeId"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Async      bool   `json:"async"`
}

func parsePeriod(year, month int) (payroll.Period, error) {
	if year < 2000 || year > 2100 {
		return payroll.Period{}, fmt.Errorf("year out of range")
	}
	if month < 1 || month > 12 {
		return payroll.Period{}, fmt.Errorf("month out of range")
	}
	return payroll.Period{Year: year, Month: time.Month(month)}, nil
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload generatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.EmployeeID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employeeId is required", reqID)
		return
	}
	period, err := parsePeriod(payload.Year, payload.Month)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), reqID)
		return
	}

	generated, created, err := h.Service.Generate(r.Context(), payload.EmployeeID, period, user.UserID)
	if errors.Is(err, employee.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_generate_failed", "failed to generate payroll", reqID)
		return
	}

	// Replaying the same period returns the original record unchanged.
	if created {
		api.Created(w, payroll.View(generated), reqID)
		return
	}
	api.Success(w, payroll.View(generated), reqID)
}

func (h *Handler) handleGenerateBatch(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload generatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	period, err := parsePeriod(payload.Year, payload.Month)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), reqID)
		return
	}

	if payload.Async {
		runID := h.Jobs.Enqueue(jobs.JobPayrollRun, func(ctx context.Context) (any, error) {
			return h.Service.GenerateForPeriod(ctx, period, user.UserID)
		})
		writeAccepted(w, map[string]string{"runId": runID}, reqID)
		return
	}

	result, err := h.Jobs.RunNow(r.Context(), jobs.JobPayrollRun, func(ctx context.Context) (any, error) {
		return h.Service.GenerateForPeriod(ctx, period, user.UserID)
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_batch_failed", "failed to run payroll batch", reqID)
		return
	}
	api.Success(w, result, reqID)
}

func writeAccepted(w http.ResponseWriter, data any, requestID string) {
	api.WriteJSON(w, http.StatusAccepted, api.Envelope{Success: true, Data: data, RequestID: requestID})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	record, err := h.Service.Get(r.Context(), chi.URLParam(r, "payrollID"))
	if errors.Is(err, payroll.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "payroll not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_get_failed", "failed to load payroll", reqID)
		return
	}
	if !h.canViewEmployee(r, user, record.EmployeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view this payroll", reqID)
		return
	}
	api.Success(w, payroll.View(record), reqID)
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	payrollID := chi.URLParam(r, "payrollID")

	record, err := h.Service.Get(r.Context(), payrollID)
	if errors.Is(err, payroll.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "payroll not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_get_failed", "failed to load payroll", reqID)
		return
	}
	if !h.canViewEmployee(r, user, record.EmployeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view this payslip", reqID)
		return
	}

	pdf, err := h.Service.PayslipPDF(r.Context(), payrollID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to render payslip", reqID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%s.pdf", payrollID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) handleListByEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	if !h.canViewEmployee(r, user, employeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view this employee's payrolls", reqID)
		return
	}

	records, err := h.Service.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_list_failed", "failed to list payrolls", reqID)
		return
	}
	api.Success(w, payroll.Views(records), reqID)
}

func (h *Handler) handleListByPeriod(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "year must be numeric", reqID)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "month must be numeric", reqID)
		return
	}
	period, err := parsePeriod(year, month)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), reqID)
		return
	}

	records, err := h.Service.ListByPeriod(r.Context(), period)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_list_failed", "failed to list payrolls", reqID)
		return
	}
	api.Success(w, payroll.Views(records), reqID)
}

func (h *Handler) canViewEmployee(r *http.Request, user auth.UserContext, employeeID string) bool {
	if auth.IsApproverRole(user.Role) {
		return true
	}
	own, err := h.Employees.GetByUserID(r.Context(), user.UserID)
	return err == nil && own.ID == employeeID
}
