package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleEmployee = "Employee"
	RoleManager  = "Manager"
	RoleHR       = "HR"
	RoleAdmin    = "Admin"
)

var ErrInvalidToken = errors.New("invalid token")

// ApproverRoles are the roles allowed to decide leave requests and to run
// payroll generation.
var ApproverRoles = []string{RoleManager, RoleHR, RoleAdmin}

func IsApproverRole(role string) bool {
	for _, candidate := range ApproverRoles {
		if role == candidate {
			return true
		}
	}
	return false
}

type UserContext struct {
	UserID string
	Email  string
	Role   string
}

type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func IssueToken(secret, userID, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
