package payroll

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PayslipPDF renders a payroll record with its line items and derived totals.
func (s *Service) PayslipPDF(ctx context.Context, payrollID string) ([]byte, error) {
	p, err := s.Store.Get(ctx, payrollID)
	if err != nil {
		return nil, err
	}
	emp, err := s.Employees.Get(ctx, p.EmployeeID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", emp.Name))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Department: %s / %s", emp.Department, emp.Position))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Pay period: %s", p.PayPeriod.Format("January 2006")))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Base salary: %.2f", p.BaseSalary))
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Allowances")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	for _, a := range p.Allowances {
		pdf.Cell(0, 7, fmt.Sprintf("  %s: %.2f", a.Type, a.Amount))
		pdf.Ln(6)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Deductions")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	for _, d := range p.Deductions {
		pdf.Cell(0, 7, fmt.Sprintf("  %s: %.2f", d.Type, d.Amount))
		pdf.Ln(6)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total allowances: %.2f", p.TotalAllowances()))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total deductions: %.2f", p.TotalDeductions()))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Net pay: %.2f", p.NetPay()))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
