package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"hrledger/internal/domain/auth"
	"hrledger/internal/domain/employee"
	"hrledger/internal/domain/leave"
	"hrledger/internal/domain/payroll"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	Store  *Store
	Users  *auth.Store
	Mailer Mailer
	From   string
}

func New(store *Store, users *auth.Store, mailer Mailer, from string) *Service {
	return &Service{Store: store, Users: users, Mailer: mailer, From: from}
}

// LeaveRequestCreated notifies everyone who can decide the request.
func (s *Service) LeaveRequestCreated(ctx context.Context, req leave.Request, emp employee.Employee) error {
	approvers, err := s.Users.UsersByRoles(ctx, auth.ApproverRoles)
	if err != nil {
		return err
	}

	title := "New Leave Request"
	body := fmt.Sprintf("%s requested %s leave from %s to %s (%d days).",
		emp.Name, req.LeaveType,
		req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"), req.Days())

	for _, approver := range approvers {
		s.deliver(ctx, approver.ID, approver.Email, "leave_request_created", title, body)
	}
	return nil
}

// LeaveStatusChanged notifies the requesting employee of the decision.
func (s *Service) LeaveStatusChanged(ctx context.Context, req leave.Request, emp employee.Employee) error {
	title := fmt.Sprintf("Leave Request %s", req.Status)
	body := fmt.Sprintf("Your %s leave from %s to %s was %s.",
		req.LeaveType, req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"), req.Status)
	if req.ManagerComments != "" {
		body += " Comments: " + req.ManagerComments
	}
	return s.notifyEmployee(ctx, emp, "leave_status_changed", title, body)
}

// PayrollReady notifies the employee that a payroll was generated.
func (s *Service) PayrollReady(ctx context.Context, p payroll.Payroll, emp employee.Employee) error {
	title := "Payroll Generated"
	body := fmt.Sprintf("Your payroll for %s is ready. Net pay: %.2f.",
		p.PayPeriod.Format("January 2006"), p.NetPay())
	return s.notifyEmployee(ctx, emp, "payroll_ready", title, body)
}

func (s *Service) notifyEmployee(ctx context.Context, emp employee.Employee, ntype, title, body string) error {
	if emp.UserID == "" {
		return nil
	}
	email := ""
	if user, err := s.Users.FindUserByID(ctx, emp.UserID); err == nil {
		email = user.Email
	}
	s.deliver(ctx, emp.UserID, email, ntype, title, body)
	return nil
}

func (s *Service) deliver(ctx context.Context, userID, email, ntype, title, body string) {
	if err := s.Store.Create(ctx, userID, ntype, title, body); err != nil {
		slog.Warn("notification insert failed", "type", ntype, "err", err)
	}
	if s.Mailer == nil || email == "" {
		return
	}
	if err := s.Mailer.Send(ctx, s.From, email, title, body); err != nil {
		slog.Warn("notification email send failed", "type", ntype, "err", err)
	}
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	return s.Store.List(ctx, userID, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.Store.MarkRead(ctx, userID, notificationID)
}
