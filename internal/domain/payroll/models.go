package payroll

import "time"

// Period is a calendar month pay period, keyed by year and month only.
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Start is the first day of the period month.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the last day of the period month.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// Interval is an inclusive day range taken from a leave request.
type Interval struct {
	Start time.Time
	End   time.Time
}

type Allowance struct {
	ID        string  `json:"id,omitempty"`
	PayrollID string  `json:"payrollId,omitempty"`
	Type      string  `json:"type"`
	Amount    float64 `json:"amount"`
}

type Deduction struct {
	ID        string  `json:"id,omitempty"`
	PayrollID string  `json:"payrollId,omitempty"`
	Type      string  `json:"type"`
	Amount    float64 `json:"amount"`
}

type Payroll struct {
	ID          string      `json:"id"`
	EmployeeID  string      `json:"employeeId"`
	PayPeriod   time.Time   `json:"payPeriod"`
	BaseSalary  float64     `json:"baseSalary"`
	Allowances  []Allowance `json:"allowances"`
	Deductions  []Deduction `json:"deductions"`
	GeneratedAt time.Time   `json:"generatedAt"`
	GeneratedBy string      `json:"generatedBy"`
}

// TotalAllowances is recomputed from the owned line items on every call;
// it is never stored.
func (p Payroll) TotalAllowances() float64 {
	var total float64
	for _, a := range p.Allowances {
		total += a.Amount
	}
	return total
}

func (p Payroll) TotalDeductions() float64 {
	var total float64
	for _, d := range p.Deductions {
		total += d.Amount
	}
	return total
}

func (p Payroll) NetPay() float64 {
	return p.BaseSalary + p.TotalAllowances() - p.TotalDeductions()
}

func (p Payroll) Period() Period {
	return PeriodOf(p.PayPeriod)
}

// view is the JSON shape served over HTTP, with the derived totals attached.
type view struct {
	Payroll
	TotalAllowances float64 `json:"totalAllowances"`
	TotalDeductions float64 `json:"totalDeductions"`
	NetPay          float64 `json:"netPay"`
}

func View(p Payroll) any {
	return view{
		Payroll:         p,
		TotalAllowances: p.TotalAllowances(),
		TotalDeductions: p.TotalDeductions(),
		NetPay:          p.NetPay(),
	}
}

func Views(payrolls []Payroll) []any {
	out := make([]any, 0, len(payrolls))
	for _, p := range payrolls {
		out = append(out, View(p))
	}
	return out
}
