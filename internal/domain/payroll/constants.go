package payroll

const (
	AllowanceTransport    = "Transportation Allowance"
	AllowanceHousing      = "Housing Allowance"
	AllowanceITDepartment = "IT Department Allowance"

	DeductionTax         = "Tax"
	DeductionUnpaidLeave = "Unpaid Leave"
)

const (
	TransportAmount     = 200.0
	HousingRate         = 0.10
	ITDepartmentAmount  = 150.0
	TaxRate             = 0.15
	WorkingDaysPerMonth = 22
)

// ITDepartment is the department name that earns the flat department allowance.
const ITDepartment = "IT"
