package leave

import "time"

type Request struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employeeId"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         time.Time  `json:"endDate"`
	LeaveType       string     `json:"leaveType"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	ManagerComments string     `json:"managerComments,omitempty"`
	ProcessedBy     string     `json:"processedBy,omitempty"`
	ProcessedAt     *time.Time `json:"processedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Days is the inclusive day count of the request interval.
func (r Request) Days() int {
	return RequestDays(r.StartDate, r.EndDate)
}

type CreateInput struct {
	EmployeeID string
	StartDate  time.Time
	EndDate    time.Time
	LeaveType  string
	Reason     string
	ActorID    string
}

type Decision struct {
	Status      string
	ProcessedBy string
	Comments    string
}

type DecisionResult struct {
	Request      Request
	PrevStatus   string
	DeductedDays int
	NewBalance   int
}
