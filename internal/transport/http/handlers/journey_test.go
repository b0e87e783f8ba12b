package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"hrledger/internal/app/server"
	"hrledger/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot locate test file")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations")
}

// TestLeaveAndPayrollJourney drives the full workflow against a real
// database: seed admin login, employee creation, leave request with balance
// projection, approval with a single deduction, and idempotent payroll
// generation with a payslip download.
func TestLeaveAndPayrollJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:       dbURL,
		JWTSecret:         "test-secret",
		Environment:       "test",
		SeedAdminEmail:    "admin@test.local",
		SeedAdminPassword: "ChangeMe123!",
		EmailFrom:         "no-reply@test.local",
		RunMigrations:     true,
		MigrationsDir:     migrationsDir(t),
		RunSeed:           true,
		StoreTimeout:      5 * time.Second,
		PayrollWorkers:    2,
	}

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	employeeID := createEmployee(t, client, ts.URL, token)

	balance := leaveBalance(t, client, ts.URL, token, employeeID)
	if balance != 21 {
		t.Fatalf("expected fresh balance 21, got %d", balance)
	}

	requestID := createLeaveRequest(t, client, ts.URL, token, employeeID, "2025-06-02", "2025-06-06")

	// The pending request already holds its days.
	if got := leaveBalance(t, client, ts.URL, token, employeeID); got != 16 {
		t.Fatalf("expected projected balance 16, got %d", got)
	}

	approveLeaveRequest(t, client, ts.URL, token, requestID)
	if got := leaveBalance(t, client, ts.URL, token, employeeID); got != 16 {
		t.Fatalf("expected balance 16 after approval, got %d", got)
	}

	// A second approval replay must not deduct again.
	approveLeaveRequest(t, client, ts.URL, token, requestID)
	if got := leaveBalance(t, client, ts.URL, token, employeeID); got != 16 {
		t.Fatalf("expected balance 16 after duplicate approval, got %d", got)
	}

	// Two racing approvals of the same request must deduct exactly once:
	// the row lock serializes them and the loser sees an already-approved
	// request.
	racedID := createLeaveRequest(t, client, ts.URL, token, employeeID, "2025-06-09", "2025-06-13")
	if got := leaveBalance(t, client, ts.URL, token, employeeID); got != 11 {
		t.Fatalf("expected projected balance 11, got %d", got)
	}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- approveOnce(client, ts.URL, token, racedID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent approval: %v", err)
		}
	}
	if got := leaveBalance(t, client, ts.URL, token, employeeID); got != 11 {
		t.Fatalf("expected balance 11 after concurrent approvals, got %d", got)
	}

	// Deleting leave requests is not supported.
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/leave/requests/"+requestID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("delete request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotImplemented {
		t.Fatalf("expected 501 for leave delete, got %d", resp.StatusCode)
	}

	firstID, status := generatePayroll(t, client, ts.URL, token, employeeID)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 on first generation, got %d", status)
	}
	secondID, status := generatePayroll(t, client, ts.URL, token, employeeID)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", status)
	}
	if firstID != secondID {
		t.Fatalf("expected idempotent payroll id, got %s then %s", firstID, secondID)
	}

	downloadPayslip(t, client, ts.URL, token, firstID)
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := client.Post(baseURL+"/api/v1/auth/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("login status %d: %s", resp.StatusCode, body)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("missing token in login response")
	}
	return data.Token
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("%s %s: bad envelope %s", method, url, raw)
		}
	}
	return resp, env
}

func createEmployee(t *testing.T, client *http.Client, baseURL, token string) string {
	t.Helper()
	name := fmt.Sprintf("Journey Employee %d", time.Now().UnixNano())
	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/employees", token, map[string]any{
		"name":       name,
		"department": "Sales",
		"position":   "Account Executive",
		"salary":     5000,
		"role":       "Employee",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create employee status %d", resp.StatusCode)
	}
	var emp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &emp); err != nil || emp.ID == "" {
		t.Fatalf("missing employee id")
	}
	return emp.ID
}

func leaveBalance(t *testing.T, client *http.Client, baseURL, token, employeeID string) int {
	t.Helper()
	resp, env := doJSON(t, client, http.MethodGet, baseURL+"/api/v1/employees/"+employeeID+"/leave-balance", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("leave balance status %d", resp.StatusCode)
	}
	var data struct {
		RemainingBalance int `json:"remainingBalance"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	return data.RemainingBalance
}

func createLeaveRequest(t *testing.T, client *http.Client, baseURL, token, employeeID, start, end string) string {
	t.Helper()
	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/leave/requests", token, map[string]any{
		"employeeId": employeeID,
		"startDate":  start,
		"endDate":    end,
		"leaveType":  "Annual",
		"reason":     "integration journey",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create leave request status %d: %s", resp.StatusCode, env.Data)
	}
	var data struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.ID == "" {
		t.Fatalf("missing leave request id")
	}
	return data.ID
}

func approveLeaveRequest(t *testing.T, client *http.Client, baseURL, token, requestID string) {
	t.Helper()
	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/leave/requests/"+requestID+"/approve", token, map[string]string{
		"comments": "approved in journey",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve status %d", resp.StatusCode)
	}
	var data struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Status != "Approved" {
		t.Fatalf("expected Approved, got %s", env.Data)
	}
}

// approveOnce is safe to call from multiple goroutines: it reports failures
// as errors instead of ending the test.
func approveOnce(client *http.Client, baseURL, token, requestID string) error {
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/leave/requests/"+requestID+"/approve",
		strings.NewReader(`{"comments":"racing approval"}`))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("approve status %d: %s", resp.StatusCode, body)
	}
	return nil
}

func generatePayroll(t *testing.T, client *http.Client, baseURL, token, employeeID string) (string, int) {
	t.Helper()
	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/payroll/generate", token, map[string]any{
		"employeeId": employeeID,
		"year":       2025,
		"month":      6,
	})
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		t.Fatalf("generate payroll status %d", resp.StatusCode)
	}
	var data struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.ID == "" {
		t.Fatalf("missing payroll id")
	}
	return data.ID, resp.StatusCode
}

func downloadPayslip(t *testing.T, client *http.Client, baseURL, token, payrollID string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, baseURL+"/api/v1/payroll/"+payrollID+"/payslip.pdf", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("payslip download failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("payslip status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) == 0 || !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Fatal("expected a PDF payload")
	}
}
