package payroll

// BuildAllowances derives the allowance line items for an employee snapshot.
// Transportation is flat and always present; Housing applies to Manager, HR
// and Admin roles; the IT department allowance is flat for the IT department.
func BuildAllowances(role, department string, baseSalary float64) []Allowance {
	var allowances []Allowance

	if role == "Manager" || role == "HR" || role == "Admin" {
		allowances = append(allowances, Allowance{Type: AllowanceHousing, Amount: baseSalary * HousingRate})
	}

	allowances = append(allowances, Allowance{Type: AllowanceTransport, Amount: TransportAmount})

	if department == ITDepartment {
		allowances = append(allowances, Allowance{Type: AllowanceITDepartment, Amount: ITDepartmentAmount})
	}
	return allowances
}

// BuildDeductions derives the deduction line items. Tax is always present;
// the unpaid-leave deduction prices each unpaid day at base/22.
func BuildDeductions(baseSalary float64, unpaidDays int) []Deduction {
	var deductions []Deduction

	if unpaidDays > 0 {
		dailyRate := baseSalary / WorkingDaysPerMonth
		deductions = append(deductions, Deduction{Type: DeductionUnpaidLeave, Amount: float64(unpaidDays) * dailyRate})
	}

	deductions = append(deductions, Deduction{Type: DeductionTax, Amount: baseSalary * TaxRate})
	return deductions
}

// UnpaidDaysInPeriod sums the inclusive day counts of approved Unpaid
// intervals that fall entirely within the period's calendar month.
func UnpaidDaysInPeriod(intervals []Interval, period Period) int {
	start, end := period.Start(), period.End()
	days := 0
	for _, iv := range intervals {
		if iv.Start.Before(start) || iv.End.After(end) {
			continue
		}
		days += int(iv.End.Sub(iv.Start).Hours()/24) + 1
	}
	return days
}
