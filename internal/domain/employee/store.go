package employee

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"hrledger/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const employeeCols = "id, COALESCE(user_id::text, ''), name, department, position, salary, role, leave_balance, hire_date, created_at"

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.UserID, &e.Name, &e.Department, &e.Position, &e.Salary, &e.Role, &e.LeaveBalance, &e.HireDate, &e.CreatedAt)
	return e, err
}

func (s *Store) Get(ctx context.Context, id string) (Employee, error) {
	e, err := scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeCols+`
    FROM employees
    WHERE id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	return e, nil
}

func (s *Store) GetByUserID(ctx context.Context, userID string) (Employee, error) {
	e, err := scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeCols+`
    FROM employees
    WHERE user_id = $1
  `, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	return e, nil
}

func (s *Store) List(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeCols+`
    FROM employees
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, e Employee) (string, error) {
	var id string
	var userID any
	if e.UserID != "" {
		userID = e.UserID
	}
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (user_id, name, department, position, salary, role, leave_balance, hire_date)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, userID, e.Name, e.Department, e.Position, e.Salary, e.Role, e.LeaveBalance, e.HireDate).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// Update rewrites the editable fields only. User link, hire date and the
// leave balance are preserved; the balance changes through leave approval.
func (s *Store) Update(ctx context.Context, e Employee) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET name = $1, department = $2, position = $3, salary = $4, role = $5
    WHERE id = $6
  `, e.Name, e.Department, e.Position, e.Salary, e.Role, e.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM employees WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
