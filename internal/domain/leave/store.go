package leave

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hrledger/internal/platform/querier"
)

type Store struct {
	DB querier.Beginner
}

func NewStore(db querier.Beginner) *Store {
	return &Store{DB: db}
}

const requestCols = `id, employee_id, start_date, end_date, leave_type, reason, status,
           COALESCE(manager_comments, ''), COALESCE(processed_by, ''), processed_at, created_at`

func scanRequest(row pgx.Row) (Request, error) {
	var r Request
	err := row.Scan(&r.ID, &r.EmployeeID, &r.StartDate, &r.EndDate, &r.LeaveType, &r.Reason,
		&r.Status, &r.ManagerComments, &r.ProcessedBy, &r.ProcessedAt, &r.CreatedAt)
	return r, err
}

func (s *Store) Get(ctx context.Context, id string) (Request, error) {
	r, err := scanRequest(s.DB.QueryRow(ctx, `
    SELECT `+requestCols+`
    FROM leave_requests
    WHERE id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrRequestNotFound
	}
	if err != nil {
		return Request{}, err
	}
	return r, nil
}

func (s *Store) ListByEmployee(ctx context.Context, employeeID string) ([]Request, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+requestCols+`
    FROM leave_requests
    WHERE employee_id = $1
    ORDER BY created_at DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *Store) ListPending(ctx context.Context) ([]Request, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+requestCols+`
    FROM leave_requests
    WHERE status = $1
    ORDER BY created_at
  `, StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *Store) ListByEmployeeTypeStatus(ctx context.Context, employeeID, leaveType, status string) ([]Request, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+requestCols+`
    FROM leave_requests
    WHERE employee_id = $1 AND leave_type = $2 AND status = $3
    ORDER BY start_date
  `, employeeID, leaveType, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func collectRequests(rows pgx.Rows) ([]Request, error) {
	var out []Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) PendingAnnualDays(ctx context.Context, employeeID string) (int, error) {
	var days int
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(end_date - start_date + 1), 0)
    FROM leave_requests
    WHERE employee_id = $1 AND leave_type = $2 AND status = $3
  `, employeeID, TypeAnnual, StatusPending).Scan(&days)
	if err != nil {
		return 0, err
	}
	return days, nil
}

func (s *Store) HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1
      FROM leave_requests
      WHERE employee_id = $1 AND status <> $2 AND start_date <= $4 AND $3 <= end_date
    )
  `, employeeID, StatusRejected, start, end).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Store) Create(ctx context.Context, r Request) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (employee_id, start_date, end_date, leave_type, reason, status)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, r.EmployeeID, r.StartDate, r.EndDate, r.LeaveType, r.Reason, StatusPending).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// Decide locks the request row, records the terminal decision, and applies
// the Annual balance deduction in the same transaction. Two concurrent
// approvals serialize on the row lock, so the second observes the Approved
// status and skips the deduction.
func (s *Store) Decide(ctx context.Context, id string, d Decision) (DecisionResult, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return DecisionResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	prev, err := scanRequest(tx.QueryRow(ctx, `
    SELECT `+requestCols+`
    FROM leave_requests
    WHERE id = $1
    FOR UPDATE
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return DecisionResult{}, ErrRequestNotFound
	}
	if err != nil {
		return DecisionResult{}, err
	}

	updated, err := scanRequest(tx.QueryRow(ctx, `
    UPDATE leave_requests
    SET status = $1, processed_by = $2, manager_comments = $3, processed_at = now()
    WHERE id = $4
    RETURNING `+requestCols+`
  `, d.Status, d.ProcessedBy, d.Comments, id))
	if err != nil {
		return DecisionResult{}, err
	}

	result := DecisionResult{Request: updated, PrevStatus: prev.Status}

	if d.Status == StatusApproved && prev.LeaveType == TypeAnnual && prev.Status != StatusApproved {
		days := prev.Days()
		if err := tx.QueryRow(ctx, `
      UPDATE employees
      SET leave_balance = leave_balance - $1
      WHERE id = $2
      RETURNING leave_balance
    `, days, prev.EmployeeID).Scan(&result.NewBalance); err != nil {
			return DecisionResult{}, err
		}
		result.DeductedDays = days
	}

	if err := tx.Commit(ctx); err != nil {
		return DecisionResult{}, err
	}
	return result, nil
}
