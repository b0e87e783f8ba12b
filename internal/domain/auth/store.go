package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hrledger/internal/platform/querier"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, password_hash, role, created_at
    FROM users
    WHERE email = $1
  `, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (User, error) {
	var u User
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, password_hash, role, created_at
    FROM users
    WHERE id = $1
  `, id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash, role string) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role)
    VALUES ($1,$2,$3)
    RETURNING id
  `, email, passwordHash, role).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UsersByRoles(ctx context.Context, roles []string) ([]User, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, email, password_hash, role, created_at
    FROM users
    WHERE role = ANY($1)
    ORDER BY email
  `, roles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
