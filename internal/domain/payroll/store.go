package payroll

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

const payrollCols = "id, employee_id, pay_period, base_salary, generated_at, generated_by"

func scanPayroll(row pgx.Row) (Payroll, error) {
	var p Payroll
	err := row.Scan(&p.ID, &p.EmployeeID, &p.PayPeriod, &p.BaseSalary, &p.GeneratedAt, &p.GeneratedBy)
	return p, err
}

func (s *Store) Get(ctx context.Context, id string) (Payroll, error) {
	p, err := scanPayroll(s.DB.QueryRow(ctx, `
    SELECT `+payrollCols+`
    FROM payrolls
    WHERE id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Payroll{}, ErrNotFound
	}
	if err != nil {
		return Payroll{}, err
	}
	return s.attachLineItems(ctx, p)
}

func (s *Store) getByPeriodKey(ctx context.Context, employeeID string, periodStart time.Time) (Payroll, error) {
	p, err := scanPayroll(s.DB.QueryRow(ctx, `
    SELECT `+payrollCols+`
    FROM payrolls
    WHERE employee_id = $1 AND pay_period = $2
  `, employeeID, periodStart))
	if errors.Is(err, pgx.ErrNoRows) {
		return Payroll{}, ErrNotFound
	}
	if err != nil {
		return Payroll{}, err
	}
	return s.attachLineItems(ctx, p)
}

func (s *Store) ListByEmployee(ctx context.Context, employeeID string) ([]Payroll, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+payrollCols+`
    FROM payrolls
    WHERE employee_id = $1
    ORDER BY pay_period DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.collect(ctx, rows)
}

func (s *Store) ListByPeriod(ctx context.Context, period Period) ([]Payroll, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+payrollCols+`
    FROM payrolls
    WHERE pay_period = $1
    ORDER BY generated_at
  `, period.Start())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.collect(ctx, rows)
}

func (s *Store) collect(ctx context.Context, rows pgx.Rows) ([]Payroll, error) {
	var out []Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range out {
		withItems, err := s.attachLineItems(ctx, out[i])
		if err != nil {
			return nil, err
		}
		out[i] = withItems
	}
	return out, nil
}

func (s *Store) attachLineItems(ctx context.Context, p Payroll) (Payroll, error) {
	allowanceRows, err := s.DB.Query(ctx, `
    SELECT id, payroll_id, type, amount
    FROM allowances
    WHERE payroll_id = $1
    ORDER BY type
  `, p.ID)
	if err != nil {
		return Payroll{}, err
	}
	defer allowanceRows.Close()
	for allowanceRows.Next() {
		var a Allowance
		if err := allowanceRows.Scan(&a.ID, &a.PayrollID, &a.Type, &a.Amount); err != nil {
			return Payroll{}, err
		}
		p.Allowances = append(p.Allowances, a)
	}
	if err := allowanceRows.Err(); err != nil {
		return Payroll{}, err
	}

	deductionRows, err := s.DB.Query(ctx, `
    SELECT id, payroll_id, type, amount
    FROM deductions
    WHERE payroll_id = $1
    ORDER BY type
  `, p.ID)
	if err != nil {
		return Payroll{}, err
	}
	defer deductionRows.Close()
	for deductionRows.Next() {
		var d Deduction
		if err := deductionRows.Scan(&d.ID, &d.PayrollID, &d.Type, &d.Amount); err != nil {
			return Payroll{}, err
		}
		p.Deductions = append(p.Deductions, d)
	}
	return p, deductionRows.Err()
}

// Insert writes the header and its line items in a single transaction. The
// unique (employee_id, pay_period) constraint makes concurrent generation
// safe: the loser of the race reads back the winner's record.
func (s *Store) Insert(ctx context.Context, p Payroll) (Payroll, bool, error) {
	periodStart := p.Period().Start()

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Payroll{}, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx, `
    INSERT INTO payrolls (employee_id, pay_period, base_salary, generated_by)
    VALUES ($1,$2,$3,$4)
    ON CONFLICT (employee_id, pay_period) DO NOTHING
    RETURNING id
  `, p.EmployeeID, periodStart, p.BaseSalary, p.GeneratedBy).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		_ = tx.Rollback(ctx)
		existing, err := s.getByPeriodKey(ctx, p.EmployeeID, periodStart)
		if err != nil {
			return Payroll{}, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return Payroll{}, false, err
	}

	for _, a := range p.Allowances {
		if _, err := tx.Exec(ctx, `
      INSERT INTO allowances (payroll_id, type, amount)
      VALUES ($1,$2,$3)
    `, id, a.Type, a.Amount); err != nil {
			return Payroll{}, false, err
		}
	}
	for _, d := range p.Deductions {
		if _, err := tx.Exec(ctx, `
      INSERT INTO deductions (payroll_id, type, amount)
      VALUES ($1,$2,$3)
    `, id, d.Type, d.Amount); err != nil {
			return Payroll{}, false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Payroll{}, false, err
	}

	stored, err := s.Get(ctx, id)
	if err != nil {
		return Payroll{}, false, err
	}
	return stored, true, nil
}
