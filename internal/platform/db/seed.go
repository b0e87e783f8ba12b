package db

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"hrledger/internal/platform/config"
)

// Seed provisions the bootstrap admin account and, optionally, a small set of
// sample employees. Re-running against a seeded database is a no-op.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if !cfg.RunSeed {
		return nil
	}

	password := cfg.SeedAdminPassword
	if password == "" {
		password = "ChangeMe123!"
		slog.Warn("seeding admin with default password; set SEED_ADMIN_PASSWORD")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var adminID string
	err = pool.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role)
    VALUES ($1, $2, 'Admin')
    ON CONFLICT (email) DO UPDATE SET role = 'Admin'
    RETURNING id
  `, cfg.SeedAdminEmail, string(hash)).Scan(&adminID)
	if err != nil {
		return err
	}

	if !cfg.SeedSampleData {
		return nil
	}
	return seedSampleEmployees(ctx, pool)
}

func seedSampleEmployees(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM employees").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	samples := []struct {
		name       string
		department string
		position   string
		salary     float64
		role       string
	}{
		{"Alice Mwangi", "Engineering", "Senior Engineer", 9500, "Employee"},
		{"Brian Otieno", "IT", "Systems Administrator", 7200, "Employee"},
		{"Carol Njeri", "Sales", "Account Executive", 6400, "Employee"},
		{"David Kamau", "HR", "HR Manager", 10000, "Manager"},
	}
	hire := time.Now().AddDate(-1, 0, 0)
	for _, s := range samples {
		_, err := pool.Exec(ctx, `
      INSERT INTO employees (name, department, position, salary, role, hire_date)
      VALUES ($1,$2,$3,$4,$5,$6)
    `, s.name, s.department, s.position, s.salary, s.role, hire)
		if err != nil {
			return err
		}
	}
	return nil
}
