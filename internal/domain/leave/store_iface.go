package leave

import (
	"context"
	"time"
)

type StoreAPI interface {
	Get(ctx context.Context, id string) (Request, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Request, error)
	ListPending(ctx context.Context) ([]Request, error)
	ListByEmployeeTypeStatus(ctx context.Context, employeeID, leaveType, status string) ([]Request, error)
	PendingAnnualDays(ctx context.Context, employeeID string) (int, error)
	HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error)
	Create(ctx context.Context, r Request) (string, error)
	// Decide applies a terminal status atomically: the request row is locked,
	// the prior status read, and the Annual balance deduction applied in the
	// same transaction only when the prior status was not already Approved.
	Decide(ctx context.Context, id string, d Decision) (DecisionResult, error)
}
