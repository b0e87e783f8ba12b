package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hrledger/internal/domain/auth"
)

func protectedEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Header().Set("X-Role", user.Role)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthAttachesUserContext(t *testing.T) {
	secret := "test-secret"
	token, err := auth.IssueToken(secret, "u1", "user@example.com", auth.RoleManager, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	handler := Auth(secret)(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Role"); got != auth.RoleManager {
		t.Fatalf("expected role %s, got %s", auth.RoleManager, got)
	}
}

func TestAuthIgnoresBadTokens(t *testing.T) {
	handler := Auth("test-secret")(protectedEcho(t))

	for _, header := range []string{"", "Bearer not-a-token", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusTeapot {
			t.Fatalf("header %q: expected anonymous pass-through, got %d", header, rec.Code)
		}
	}
}

func TestRequireApprover(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireApprover(next)

	cases := []struct {
		role string
		want int
	}{
		{auth.RoleManager, http.StatusOK},
		{auth.RoleHR, http.StatusOK},
		{auth.RoleAdmin, http.StatusOK},
		{auth.RoleEmployee, http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: "u1", Role: tc.role}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("role %s: expected %d, got %d", tc.role, tc.want, rec.Code)
		}
	}

	// Anonymous requests get 401.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous, got %d", rec.Code)
	}
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen == "" {
		t.Fatal("expected a generated request id")
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Fatal("expected request id echoed in response header")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "client-supplied" {
		t.Fatalf("expected client id preserved, got %q", seen)
	}
}
