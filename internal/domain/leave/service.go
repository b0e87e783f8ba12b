package leave

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"hrledger/internal/domain/employee"
)

// AuditSink records an action against an entity. Failures never propagate to
// the primary operation.
type AuditSink interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, before, after any) error
}

// Notifier delivers leave lifecycle notifications. Failures never propagate.
type Notifier interface {
	LeaveRequestCreated(ctx context.Context, req Request, emp employee.Employee) error
	LeaveStatusChanged(ctx context.Context, req Request, emp employee.Employee) error
}

type Service struct {
	Store     StoreAPI
	Employees employee.StoreAPI
	Audit     AuditSink
	Notify    Notifier
}

func NewService(store StoreAPI, employees employee.StoreAPI, audit AuditSink, notify Notifier) *Service {
	return &Service{Store: store, Employees: employees, Audit: audit, Notify: notify}
}

// RemainingBalance is a projection over the live set of pending Annual
// requests, recomputed on every call and clamped at zero.
func (s *Service) RemainingBalance(ctx context.Context, employeeID string) (int, error) {
	emp, err := s.Employees.Get(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	pendingDays, err := s.Store.PendingAnnualDays(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	return AvailableBalance(emp.LeaveBalance, pendingDays), nil
}

func (s *Service) HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	return s.Store.HasOverlap(ctx, employeeID, start, end)
}

// Create validates balance then overlap, persists the Pending request, and
// runs the audit/notify hooks after the write. Hook failures are logged and
// swallowed; the request stands once persisted.
func (s *Service) Create(ctx context.Context, in CreateInput) (Request, error) {
	// Work in whole days: the interval columns are DATEs, so a stray
	// time-of-day would desync the validated count from the stored one.
	in.StartDate = dateOnly(in.StartDate)
	in.EndDate = dateOnly(in.EndDate)
	if in.EndDate.Before(in.StartDate) {
		return Request{}, ErrInvalidRange
	}
	in.Reason = strings.TrimSpace(in.Reason)
	if in.Reason == "" || len(in.Reason) > MaxReasonLength {
		return Request{}, ErrInvalidReason
	}

	emp, err := s.Employees.Get(ctx, in.EmployeeID)
	if err != nil {
		return Request{}, err
	}

	if in.LeaveType == TypeAnnual {
		available, err := s.RemainingBalance(ctx, in.EmployeeID)
		if err != nil {
			return Request{}, err
		}
		if RequestDays(in.StartDate, in.EndDate) > available {
			return Request{}, ErrInsufficientBalance
		}
	}

	overlap, err := s.Store.HasOverlap(ctx, in.EmployeeID, in.StartDate, in.EndDate)
	if err != nil {
		return Request{}, err
	}
	if overlap {
		return Request{}, ErrOverlappingRequest
	}

	id, err := s.Store.Create(ctx, Request{
		EmployeeID: in.EmployeeID,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		LeaveType:  in.LeaveType,
		Reason:     in.Reason,
	})
	if err != nil {
		return Request{}, err
	}

	req, err := s.Store.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}

	actor := in.ActorID
	if actor == "" {
		actor = "System"
	}
	s.runHooks(ctx, "leave request create",
		func(ctx context.Context) error {
			if s.Audit == nil {
				return nil
			}
			return s.Audit.Record(ctx, actor, "Create", "LeaveRequest", req.ID, nil, req)
		},
		func(ctx context.Context) error {
			if s.Notify == nil {
				return nil
			}
			return s.Notify.LeaveRequestCreated(ctx, req, emp)
		},
	)
	return req, nil
}

func (s *Service) Approve(ctx context.Context, id, processedBy, comments string) (Request, error) {
	return s.decide(ctx, id, Decision{Status: StatusApproved, ProcessedBy: processedBy, Comments: comments})
}

func (s *Service) Reject(ctx context.Context, id, processedBy, comments string) (Request, error) {
	return s.decide(ctx, id, Decision{Status: StatusRejected, ProcessedBy: processedBy, Comments: comments})
}

func (s *Service) decide(ctx context.Context, id string, d Decision) (Request, error) {
	result, err := s.Store.Decide(ctx, id, d)
	if err != nil {
		return Request{}, err
	}

	req := result.Request
	s.runHooks(ctx, "leave request "+strings.ToLower(d.Status),
		func(ctx context.Context) error {
			if s.Audit == nil {
				return nil
			}
			before := map[string]any{"status": result.PrevStatus}
			after := map[string]any{"status": req.Status, "deductedDays": result.DeductedDays}
			return s.Audit.Record(ctx, d.ProcessedBy, d.Status, "LeaveRequest", req.ID, before, after)
		},
		func(ctx context.Context) error {
			if s.Notify == nil {
				return nil
			}
			emp, err := s.Employees.Get(ctx, req.EmployeeID)
			if err != nil {
				return err
			}
			return s.Notify.LeaveStatusChanged(ctx, req, emp)
		},
	)
	return req, nil
}

// Delete mirrors the source system, which never implemented request removal.
func (s *Service) Delete(ctx context.Context, id string) error {
	return ErrNotImplemented
}

func (s *Service) Get(ctx context.Context, id string) (Request, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) ListByEmployee(ctx context.Context, employeeID string) ([]Request, error) {
	return s.Store.ListByEmployee(ctx, employeeID)
}

func (s *Service) ListPending(ctx context.Context) ([]Request, error) {
	return s.Store.ListPending(ctx)
}

func (s *Service) runHooks(ctx context.Context, op string, hooks ...func(context.Context) error) {
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			slog.Warn("post-commit hook failed", "op", op, "err", err)
		}
	}
}
