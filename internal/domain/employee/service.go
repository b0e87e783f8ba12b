package employee

import (
	"context"
	"strings"
	"time"
)

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) GetByUserID(ctx context.Context, userID string) (Employee, error) {
	return s.Store.GetByUserID(ctx, userID)
}

func (s *Service) List(ctx context.Context) ([]Employee, error) {
	return s.Store.List(ctx)
}

// Create persists a new employee. The caller decides the leave balance
// explicitly (zero is a valid entitlement); only role and hire date default.
func (s *Service) Create(ctx context.Context, e Employee) (Employee, error) {
	e.Name = strings.TrimSpace(e.Name)
	if e.Role == "" {
		e.Role = "Employee"
	}
	if e.HireDate.IsZero() {
		e.HireDate = time.Now().UTC()
	}
	id, err := s.Store.Create(ctx, e)
	if err != nil {
		return Employee{}, err
	}
	return s.Store.Get(ctx, id)
}

// Update merges the incoming fields over the stored record: empty strings
// and a negative salary mean "unchanged", so a partial payload never blanks
// a column.
func (s *Service) Update(ctx context.Context, e Employee) (Employee, error) {
	current, err := s.Store.Get(ctx, e.ID)
	if err != nil {
		return Employee{}, err
	}
	if strings.TrimSpace(e.Name) == "" {
		e.Name = current.Name
	}
	if e.Department == "" {
		e.Department = current.Department
	}
	if e.Position == "" {
		e.Position = current.Position
	}
	if e.Role == "" {
		e.Role = current.Role
	}
	if e.Salary < 0 {
		e.Salary = current.Salary
	}
	if err := s.Store.Update(ctx, e); err != nil {
		return Employee{}, err
	}
	return s.Store.Get(ctx, e.ID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}

// DefaultLeaveBalance is the annual entitlement assigned to new employees.
const DefaultLeaveBalance = 21
