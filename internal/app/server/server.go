package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrledger/internal/domain/audit"
	"hrledger/internal/domain/auth"
	"hrledger/internal/domain/employee"
	"hrledger/internal/domain/leave"
	"hrledger/internal/domain/notifications"
	"hrledger/internal/domain/payroll"
	"hrledger/internal/platform/config"
	"hrledger/internal/platform/db"
	"hrledger/internal/platform/email"
	"hrledger/internal/platform/jobs"
	"hrledger/internal/platform/metrics"
	audithandler "hrledger/internal/transport/http/handlers/audit"
	authhandler "hrledger/internal/transport/http/handlers/auth"
	employeeshandler "hrledger/internal/transport/http/handlers/employees"
	leavehandler "hrledger/internal/transport/http/handlers/leave"
	notificationshandler "hrledger/internal/transport/http/handlers/notifications"
	payrollhandler "hrledger/internal/transport/http/handlers/payroll"
	systemhandler "hrledger/internal/transport/http/handlers/system"
	"hrledger/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	Pool    *pgxpool.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector

	Users     *auth.Store
	Employees *employee.Service
	Leave     *leave.Service
	Payroll   *payroll.Service
}

// New wires the full application against an already reachable database.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	if err := db.Seed(ctx, pool, cfg); err != nil {
		pool.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}

	app := &App{Config: cfg, Pool: pool}
	app.build()
	return app, nil
}

func (a *App) build() {
	a.Metrics = metrics.New()
	a.Jobs = jobs.New()

	users := auth.NewStore(a.Pool)
	employeeStore := employee.NewStore(a.Pool)
	leaveStore := leave.NewStore(a.Pool)
	payrollStore := payroll.NewStore(a.Pool)
	notificationStore := notifications.NewStore(a.Pool)

	auditSvc := audit.New(a.Pool)
	mailer := email.New(a.Config)
	notifySvc := notifications.New(notificationStore, users, mailer, a.Config.EmailFrom)

	employeeSvc := employee.NewService(employeeStore)
	leaveSvc := leave.NewService(leaveStore, employeeStore, auditSvc, notifySvc)
	payrollSvc := payroll.NewService(payrollStore, employeeStore, leaveStore, auditSvc, notifySvc)
	payrollSvc.Workers = a.Config.PayrollWorkers

	a.Users = users
	a.Employees = employeeSvc
	a.Leave = leaveSvc
	a.Payroll = payrollSvc

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Metrics(a.Metrics))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.Auth(a.Config.JWTSecret))

	systemHandler := systemhandler.NewHandler(a.Pool, a.Metrics, a.Jobs)
	systemHandler.RegisterRoutes(router)

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(users, a.Config.JWTSecret).RegisterRoutes(r)
		employeeshandler.NewHandler(employeeSvc, leaveSvc).RegisterRoutes(r)
		leavehandler.NewHandler(leaveSvc, employeeSvc).RegisterRoutes(r)
		payrollhandler.NewHandler(payrollSvc, employeeSvc, a.Jobs).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc).RegisterRoutes(r)
	})

	a.Router = router
}

func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// Run blocks serving HTTP until the listener fails or ctx is cancelled.
func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	app.Jobs.Start(ctx)

	slog.Info("hrledger server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
