package auth

import (
	"testing"
	"time"
)

func TestIssueAndParseToken(t *testing.T) {
	secret := "test-secret"

	token, err := IssueToken(secret, "u1", "user@example.com", RoleHR, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	claims, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "user@example.com" || claims.Role != RoleHR {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := IssueToken("secret-a", "u1", "user@example.com", RoleEmployee, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatal("expected parse failure with wrong secret")
	}
}

func TestParseExpiredToken(t *testing.T) {
	token, err := IssueToken("secret", "u1", "user@example.com", RoleEmployee, -time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected parse failure for expired token")
	}
}

func TestIsApproverRole(t *testing.T) {
	for _, role := range []string{RoleManager, RoleHR, RoleAdmin} {
		if !IsApproverRole(role) {
			t.Fatalf("expected %s to be an approver role", role)
		}
	}
	if IsApproverRole(RoleEmployee) {
		t.Fatal("Employee must not be an approver role")
	}
	if IsApproverRole("Intern") {
		t.Fatal("unknown roles must not be approver roles")
	}
}
