package employeeshandler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrledger/internal/domain/auth"
	"hrledger/internal/domain/employee"
	"hrledger/internal/transport/http/middleware"
)

type fakeStore struct {
	records map[string]employee.Employee
	nextID  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]employee.Employee)}
}

func (f *fakeStore) Get(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := f.records[id]
	if !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	for _, e := range f.records {
		if e.UserID == userID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrNotFound
}

func (f *fakeStore) List(ctx context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.records {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeStore) Create(ctx context.Context, e employee.Employee) (string, error) {
	f.nextID++
	e.ID = fmt.Sprintf("emp-%d", f.nextID)
	f.records[e.ID] = e
	return e.ID, nil
}

func (f *fakeStore) Update(ctx context.Context, e employee.Employee) error {
	current, ok := f.records[e.ID]
	if !ok {
		return employee.ErrNotFound
	}
	current.Name = e.Name
	current.Department = e.Department
	current.Position = e.Position
	current.Salary = e.Salary
	current.Role = e.Role
	f.records[e.ID] = current
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.records[id]; !ok {
		return employee.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

func newTestRouter(store *fakeStore) chi.Router {
	h := NewHandler(employee.NewService(store), nil)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func asApprover(r *http.Request) *http.Request {
	ctx := middleware.WithUser(r.Context(), auth.UserContext{
		UserID: "user-mgr",
		Email:  "manager@example.com",
		Role:   auth.RoleManager,
	})
	return r.WithContext(ctx)
}

func doRequest(t *testing.T, router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asApprover(req))
	return rec
}

func TestCreateHonorsExplicitZeroBalance(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)

	rec := doRequest(t, router, http.MethodPost, "/employees",
		`{"name":"Contractor","department":"Engineering","salary":4000,"leaveBalance":0}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	stored := store.records["emp-1"]
	assert.Equal(t, 0, stored.LeaveBalance, "an explicit zero entitlement is not a missing field")
}

func TestCreateDefaultsBalanceWhenOmitted(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)

	rec := doRequest(t, router, http.MethodPost, "/employees",
		`{"name":"New Hire","department":"Sales","salary":5000}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	stored := store.records["emp-1"]
	assert.Equal(t, employee.DefaultLeaveBalance, stored.LeaveBalance)
}

func TestCreateRejectsNegativeBalance(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)

	rec := doRequest(t, router, http.MethodPost, "/employees",
		`{"name":"X","department":"Sales","leaveBalance":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.records)
}

func TestUpdatePartialPayloadPreservesStoredFields(t *testing.T) {
	store := newFakeStore()
	store.records["emp-1"] = employee.Employee{
		ID:           "emp-1",
		Name:         "Original Name",
		Department:   "IT",
		Position:     "Sysadmin",
		Salary:       7000,
		Role:         auth.RoleEmployee,
		LeaveBalance: 21,
	}
	router := newTestRouter(store)

	// Only the name is sent; everything else must survive the update.
	rec := doRequest(t, router, http.MethodPut, "/employees/emp-1", `{"name":"New Name"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored := store.records["emp-1"]
	assert.Equal(t, "New Name", stored.Name)
	assert.Equal(t, "IT", stored.Department)
	assert.Equal(t, "Sysadmin", stored.Position)
	assert.Equal(t, auth.RoleEmployee, stored.Role)
	assert.Equal(t, 7000.0, stored.Salary)
	assert.Equal(t, 21, stored.LeaveBalance)
}

func TestUpdateUnknownEmployee(t *testing.T) {
	router := newTestRouter(newFakeStore())
	rec := doRequest(t, router, http.MethodPut, "/employees/emp-404", `{"name":"X"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
