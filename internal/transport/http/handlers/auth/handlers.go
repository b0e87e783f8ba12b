package authhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"hrledger/internal/domain/auth"
	"hrledger/internal/transport/http/api"
	"hrledger/internal/transport/http/middleware"
)

const tokenTTL = 8 * time.Hour

type Handler struct {
	Users     *auth.Store
	JWTSecret string
}

func NewHandler(users *auth.Store, jwtSecret string) *Handler {
	return &Handler{Users: users, JWTSecret: jwtSecret}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.With(middleware.RequireAdmin).Post("/register", h.handleRegister)
		r.With(middleware.RequireAuth).Get("/me", h.handleMe)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  auth.User `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	user, err := h.Users.FindUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(payload.Email)))
	if err != nil {
		// Same response for unknown email and bad password.
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", reqID)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)) != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", reqID)
		return
	}

	token, err := auth.IssueToken(h.JWTSecret, user.ID, user.Email, user.Role, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_issue_failed", "failed to issue token", reqID)
		return
	}
	api.Success(w, loginResponse{Token: token, User: user}, reqID)
}

// handleLogout exists for client symmetry; tokens are stateless and simply
// expire, so there is nothing to revoke server-side.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	api.Success(w, map[string]string{"status": "logged out"}, middleware.GetRequestID(r.Context()))
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload registerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if payload.Email == "" || len(payload.Password) < 8 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "email and a password of at least 8 characters are required", reqID)
		return
	}
	if payload.Role == "" {
		payload.Role = auth.RoleEmployee
	}
	if payload.Role != auth.RoleEmployee && !auth.IsApproverRole(payload.Role) {
		api.Fail(w, http.StatusBadRequest, "invalid_role", "unknown role", reqID)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "register_failed", "failed to register user", reqID)
		return
	}

	id, err := h.Users.CreateUser(r.Context(), payload.Email, string(hash), payload.Role)
	if err != nil {
		api.Fail(w, http.StatusConflict, "register_failed", "failed to register user", reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	record, err := h.Users.FindUserByID(r.Context(), user.UserID)
	if errors.Is(err, auth.ErrUserNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "lookup_failed", "failed to load user", reqID)
		return
	}
	api.Success(w, record, reqID)
}
