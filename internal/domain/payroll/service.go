package payroll

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"hrledger/internal/domain/employee"
	"hrledger/internal/domain/leave"
)

// LeaveStore is the slice of the leave store the generator needs to price
// unpaid leave.
type LeaveStore interface {
	ListByEmployeeTypeStatus(ctx context.Context, employeeID, leaveType, status string) ([]leave.Request, error)
}

type AuditSink interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, before, after any) error
}

type Notifier interface {
	PayrollReady(ctx context.Context, p Payroll, emp employee.Employee) error
}

type Service struct {
	Store     StoreAPI
	Employees employee.StoreAPI
	Leave     LeaveStore
	Audit     AuditSink
	Notify    Notifier
	Workers   int
}

func NewService(store StoreAPI, employees employee.StoreAPI, leaveStore LeaveStore, audit AuditSink, notify Notifier) *Service {
	return &Service{Store: store, Employees: employees, Leave: leaveStore, Audit: audit, Notify: notify, Workers: 4}
}

// Generate produces the payroll snapshot for one employee and period. It is
// idempotent on (employee, period): an existing payroll is returned unchanged
// and created is false.
func (s *Service) Generate(ctx context.Context, employeeID string, period Period, generatedBy string) (Payroll, bool, error) {
	emp, err := s.Employees.Get(ctx, employeeID)
	if err != nil {
		return Payroll{}, false, err
	}

	unpaidDays, err := s.unpaidLeaveDays(ctx, employeeID, period)
	if err != nil {
		return Payroll{}, false, err
	}

	draft := Payroll{
		EmployeeID:  employeeID,
		PayPeriod:   period.Start(),
		BaseSalary:  emp.Salary,
		Allowances:  BuildAllowances(emp.Role, emp.Department, emp.Salary),
		Deductions:  BuildDeductions(emp.Salary, unpaidDays),
		GeneratedBy: generatedBy,
	}

	stored, created, err := s.Store.Insert(ctx, draft)
	if err != nil {
		return Payroll{}, false, err
	}

	if created {
		s.runHooks(ctx, "payroll generate",
			func(ctx context.Context) error {
				if s.Audit == nil {
					return nil
				}
				return s.Audit.Record(ctx, generatedBy, "Generate", "Payroll", stored.ID, nil, stored)
			},
			func(ctx context.Context) error {
				if s.Notify == nil {
					return nil
				}
				return s.Notify.PayrollReady(ctx, stored, emp)
			},
		)
	}
	return stored, created, nil
}

type BatchItem struct {
	EmployeeID string `json:"employeeId"`
	PayrollID  string `json:"payrollId,omitempty"`
	Created    bool   `json:"created"`
	Error      string `json:"error,omitempty"`
}

type BatchResult struct {
	Period    Period      `json:"period"`
	Generated int         `json:"generated"`
	Existing  int         `json:"existing"`
	Failed    int         `json:"failed"`
	Items     []BatchItem `json:"items"`
}

// GenerateForPeriod runs per-employee generation independently. There is no
// atomicity across the batch: employees that succeeded stay committed when a
// later one fails.
func (s *Service) GenerateForPeriod(ctx context.Context, period Period, generatedBy string) (BatchResult, error) {
	employees, err := s.Employees.List(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	workers := s.Workers
	if workers <= 0 {
		workers = 1
	}

	var mu sync.Mutex
	result := BatchResult{Period: period}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for _, emp := range employees {
		group.Go(func() error {
			item := BatchItem{EmployeeID: emp.ID}
			payroll, created, err := s.Generate(groupCtx, emp.ID, period, generatedBy)
			if err != nil {
				item.Error = err.Error()
			} else {
				item.PayrollID = payroll.ID
				item.Created = created
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case item.Error != "":
				result.Failed++
			case item.Created:
				result.Generated++
			default:
				result.Existing++
			}
			result.Items = append(result.Items, item)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return BatchResult{}, err
	}

	sort.Slice(result.Items, func(i, j int) bool {
		return result.Items[i].EmployeeID < result.Items[j].EmployeeID
	})
	return result, nil
}

func (s *Service) unpaidLeaveDays(ctx context.Context, employeeID string, period Period) (int, error) {
	requests, err := s.Leave.ListByEmployeeTypeStatus(ctx, employeeID, leave.TypeUnpaid, leave.StatusApproved)
	if err != nil {
		return 0, err
	}
	intervals := make([]Interval, 0, len(requests))
	for _, r := range requests {
		intervals = append(intervals, Interval{Start: r.StartDate, End: r.EndDate})
	}
	return UnpaidDaysInPeriod(intervals, period), nil
}

func (s *Service) Get(ctx context.Context, id string) (Payroll, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) ListByEmployee(ctx context.Context, employeeID string) ([]Payroll, error) {
	return s.Store.ListByEmployee(ctx, employeeID)
}

func (s *Service) ListByPeriod(ctx context.Context, period Period) ([]Payroll, error) {
	return s.Store.ListByPeriod(ctx, period)
}

func (s *Service) runHooks(ctx context.Context, op string, hooks ...func(context.Context) error) {
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			slog.Warn("post-commit hook failed", "op", op, "err", err)
		}
	}
}
