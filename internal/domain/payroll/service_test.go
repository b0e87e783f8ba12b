package payroll

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrledger/internal/domain/employee"
	"hrledger/internal/domain/leave"
)

// memPayrolls mirrors the database store contract: one payroll per
// (employee, period), replays return the stored record unchanged.
type memPayrolls struct {
	byID    map[string]Payroll
	byKey   map[string]string
	nextID  int
	inserts int
}

func newMemPayrolls() *memPayrolls {
	return &memPayrolls{byID: make(map[string]Payroll), byKey: make(map[string]string)}
}

func periodKey(employeeID string, p Period) string {
	return fmt.Sprintf("%s|%d-%02d", employeeID, p.Year, p.Month)
}

func (m *memPayrolls) Get(ctx context.Context, id string) (Payroll, error) {
	p, ok := m.byID[id]
	if !ok {
		return Payroll{}, ErrNotFound
	}
	return p, nil
}

func (m *memPayrolls) ListByEmployee(ctx context.Context, employeeID string) ([]Payroll, error) {
	var out []Payroll
	for _, p := range m.byID {
		if p.EmployeeID == employeeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPayrolls) ListByPeriod(ctx context.Context, period Period) ([]Payroll, error) {
	var out []Payroll
	for _, p := range m.byID {
		if p.Period() == period {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPayrolls) Insert(ctx context.Context, p Payroll) (Payroll, bool, error) {
	key := periodKey(p.EmployeeID, p.Period())
	if existingID, ok := m.byKey[key]; ok {
		return m.byID[existingID], false, nil
	}
	m.inserts++
	m.nextID++
	p.ID = fmt.Sprintf("pay-%d", m.nextID)
	p.GeneratedAt = time.Now()
	m.byID[p.ID] = p
	m.byKey[key] = p.ID
	return p, true, nil
}

type memEmployees struct {
	records map[string]employee.Employee
}

func (m *memEmployees) Get(ctx context.Context, id string) (employee.Employee, error) {
	emp, ok := m.records[id]
	if !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	return emp, nil
}

func (m *memEmployees) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	return employee.Employee{}, employee.ErrNotFound
}

func (m *memEmployees) List(ctx context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, emp := range m.records {
		out = append(out, emp)
	}
	return out, nil
}

func (m *memEmployees) Create(ctx context.Context, e employee.Employee) (string, error) {
	return "", errors.New("not used")
}

func (m *memEmployees) Update(ctx context.Context, e employee.Employee) error { return nil }
func (m *memEmployees) Delete(ctx context.Context, id string) error           { return nil }

type memLeave struct {
	requests []leave.Request
}

func (m *memLeave) ListByEmployeeTypeStatus(ctx context.Context, employeeID, leaveType, status string) ([]leave.Request, error) {
	var out []leave.Request
	for _, req := range m.requests {
		if req.EmployeeID == employeeID && req.LeaveType == leaveType && req.Status == status {
			out = append(out, req)
		}
	}
	return out, nil
}

type countingNotifier struct {
	ready int
}

func (c *countingNotifier) PayrollReady(ctx context.Context, p Payroll, emp employee.Employee) error {
	c.ready++
	return nil
}

func newTestService(employees map[string]employee.Employee, leaveReqs []leave.Request) (*Service, *memPayrolls, *countingNotifier) {
	store := newMemPayrolls()
	notifier := &countingNotifier{}
	svc := NewService(store, &memEmployees{records: employees}, &memLeave{requests: leaveReqs}, nil, notifier)
	return svc, store, notifier
}

func TestGenerateManagerIT(t *testing.T) {
	svc, _, _ := newTestService(map[string]employee.Employee{
		"emp-1": {ID: "emp-1", Name: "Lead", Department: "IT", Role: "Manager", Salary: 10000},
	}, nil)

	period := Period{Year: 2025, Month: time.May}
	p, created, err := svc.Generate(context.Background(), "emp-1", period, "admin-1")
	require.NoError(t, err)
	assert.True(t, created)

	assert.InDelta(t, 1350, p.TotalAllowances(), 0.001, "housing 1000 + transport 200 + IT 150")
	assert.InDelta(t, 1500, p.TotalDeductions(), 0.001, "tax only")
	assert.InDelta(t, 9850, p.NetPay(), 0.001)
}

func TestGenerateIsIdempotentPerPeriod(t *testing.T) {
	svc, store, notifier := newTestService(map[string]employee.Employee{
		"emp-1": {ID: "emp-1", Name: "Dev", Department: "Engineering", Role: "Employee", Salary: 6000},
	}, nil)

	period := Period{Year: 2025, Month: time.May}
	first, created, err := svc.Generate(context.Background(), "emp-1", period, "admin-1")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.Generate(context.Background(), "emp-1", period, "admin-2")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID, "replay returns the original record")
	assert.Equal(t, 1, store.inserts)
	assert.Equal(t, 1, notifier.ready, "hooks run only on first creation")

	// A different month is a fresh key.
	_, created, err = svc.Generate(context.Background(), "emp-1", Period{Year: 2025, Month: time.June}, "admin-1")
	require.NoError(t, err)
	assert.True(t, created)
}

func TestGenerateUnpaidLeaveDeduction(t *testing.T) {
	svc, _, _ := newTestService(map[string]employee.Employee{
		"emp-1": {ID: "emp-1", Name: "Dev", Department: "Engineering", Role: "Employee", Salary: 2200},
	}, []leave.Request{
		{
			EmployeeID: "emp-1",
			LeaveType:  leave.TypeUnpaid,
			Status:     leave.StatusApproved,
			StartDate:  time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2025, 5, 7, 0, 0, 0, 0, time.UTC),
		},
		{
			// Spans into June, so it does not count for May.
			EmployeeID: "emp-1",
			LeaveType:  leave.TypeUnpaid,
			Status:     leave.StatusApproved,
			StartDate:  time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			// Pending unpaid leave never prices into payroll.
			EmployeeID: "emp-1",
			LeaveType:  leave.TypeUnpaid,
			Status:     leave.StatusPending,
			StartDate:  time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2025, 5, 13, 0, 0, 0, 0, time.UTC),
		},
	})

	p, _, err := svc.Generate(context.Background(), "emp-1", Period{Year: 2025, Month: time.May}, "admin-1")
	require.NoError(t, err)

	var unpaid float64
	for _, d := range p.Deductions {
		if d.Type == DeductionUnpaidLeave {
			unpaid = d.Amount
		}
	}
	assert.InDelta(t, 300, unpaid, 0.001, "3 unpaid days at 2200/22 per day")
}

func TestGenerateUnknownEmployee(t *testing.T) {
	svc, _, _ := newTestService(map[string]employee.Employee{}, nil)
	_, _, err := svc.Generate(context.Background(), "emp-missing", Period{Year: 2025, Month: time.May}, "admin-1")
	assert.ErrorIs(t, err, employee.ErrNotFound)
}

func TestGenerateForPeriod(t *testing.T) {
	svc, store, _ := newTestService(map[string]employee.Employee{
		"emp-1": {ID: "emp-1", Name: "A", Department: "Sales", Role: "Employee", Salary: 5000},
		"emp-2": {ID: "emp-2", Name: "B", Department: "IT", Role: "Employee", Salary: 6000},
		"emp-3": {ID: "emp-3", Name: "C", Department: "HR", Role: "Manager", Salary: 8000},
	}, nil)

	period := Period{Year: 2025, Month: time.May}

	// Pre-generate one employee so the batch reports it as existing.
	_, _, err := svc.Generate(context.Background(), "emp-2", period, "admin-1")
	require.NoError(t, err)

	result, err := svc.GenerateForPeriod(context.Background(), period, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Generated)
	assert.Equal(t, 1, result.Existing)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "emp-1", result.Items[0].EmployeeID, "items sorted by employee")
	assert.Equal(t, 3, store.inserts)
}
