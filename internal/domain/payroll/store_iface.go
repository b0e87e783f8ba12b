package payroll

import "context"

type StoreAPI interface {
	Get(ctx context.Context, id string) (Payroll, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Payroll, error)
	ListByPeriod(ctx context.Context, period Period) ([]Payroll, error)
	// Insert persists the header and its line items in one transaction. When a
	// payroll already exists for (employee, period) the existing record is
	// returned unchanged and created is false.
	Insert(ctx context.Context, p Payroll) (stored Payroll, created bool, err error)
}
