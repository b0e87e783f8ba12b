package employee

import "time"

type Employee struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId,omitempty"`
	Name         string    `json:"name"`
	Department   string    `json:"department"`
	Position     string    `json:"position"`
	Salary       float64   `json:"salary"`
	Role         string    `json:"role"`
	LeaveBalance int       `json:"leaveBalance"`
	HireDate     time.Time `json:"hireDate"`
	CreatedAt    time.Time `json:"createdAt"`
}
