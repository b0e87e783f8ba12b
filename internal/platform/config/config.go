package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr              string
	DatabaseURL       string
	JWTSecret         string
	Environment       string
	SeedAdminEmail    string
	SeedAdminPassword string
	SeedSampleData    bool
	EmailFrom         string
	EmailEnabled      bool
	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPassword      string
	SMTPUseTLS        bool
	RunMigrations     bool
	MigrationsDir     string
	RunSeed           bool
	StoreTimeout      time.Duration
	PayrollWorkers    int
}

func Load() Config {
	// Missing .env is fine; real env vars always win.
	_ = godotenv.Load()

	return Config{
		Addr:              getEnv("APP_ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		Environment:       getEnv("APP_ENV", "development"),
		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@example.com"),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
		SeedSampleData:    getEnvBool("SEED_SAMPLE_DATA", false),
		EmailFrom:         getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailEnabled:      getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnvInt("SMTP_PORT", 587),
		SMTPUser:          getEnv("SMTP_USER", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:        getEnvBool("SMTP_USE_TLS", true),
		RunMigrations:     getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:     getEnv("MIGRATIONS_DIR", "migrations"),
		RunSeed:           getEnvBool("RUN_SEED", true),
		StoreTimeout:      getEnvDuration("STORE_TIMEOUT", 5*time.Second),
		PayrollWorkers:    getEnvInt("PAYROLL_WORKERS", 4),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.PayrollWorkers <= 0 {
		return fmt.Errorf("PAYROLL_WORKERS must be positive")
	}
	return nil
}
