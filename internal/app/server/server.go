package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"snd/internal/domain/audit"
	"snd/internal/domain/auth"
	"snd/internal/domain/employee"
	"snd/internal/domain/increment"
	"snd/internal/domain/leave"
	"snd/internal/domain/rbac"
	"snd/internal/domain/reports"
	"snd/internal/domain/timesheet"
	"snd/internal/platform/cache"
	"snd/internal/platform/config"
	"snd/internal/platform/db"
	"snd/internal/platform/seed"
	authhandler "snd/internal/transport/http/handlers/auth"
	employeehandler "snd/internal/transport/http/handlers/employee"
	incrementhandler "snd/internal/transport/http/handlers/increment"
	leavehandler "snd/internal/transport/http/handlers/leave"
	rbachandler "snd/internal/transport/http/handlers/rbac"
	reportshandler "snd/internal/transport/http/handlers/reports"
	timesheethandler "snd/internal/transport/http/handlers/timesheet"
	"snd/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			slog.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}
	if cfg.RunSeed {
		if err := seed.Seed(ctx, pool, cfg); err != nil {
			slog.Error("seed failed", "err", err)
			os.Exit(1)
		}
	}

	redisClient, err := cache.Connect(cfg.RedisURL)
	if err != nil {
		slog.Error("redis connect failed", "err", err)
		os.Exit(1)
	}
	var decisionCache rbac.DecisionCache
	if redisClient != nil {
		decisionCache = cache.NewDecisions(redisClient, cfg.PermCacheTTL)
	}

	auditService := audit.New(pool)
	rbacService := rbac.NewService(rbac.NewStore(pool), decisionCache, rbac.DefaultSections())
	authService := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, 0)
	employeeService := employee.NewService(employee.NewStore(pool))
	timesheetService := timesheet.NewService(timesheet.NewStore(pool), auditService, cfg.LockApprovedHours)
	incrementService := increment.NewService(increment.NewStore(pool), auditService)
	leaveService := leave.NewService(leave.NewStore(pool), auditService)
	reportsService := reports.NewService(pool, cfg.ReportsDir)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.SensitiveMutationRateLimit(30, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authService).RegisterRoutes(r)
		rbachandler.NewHandler(rbacService).RegisterRoutes(r)
		employeehandler.NewHandler(employeeService, rbacService).RegisterRoutes(r)
		timesheethandler.NewHandler(timesheetService, rbacService).RegisterRoutes(r)
		incrementhandler.NewHandler(incrementService, rbacService).RegisterRoutes(r)
		leavehandler.NewHandler(leaveService, rbacService).RegisterRoutes(r)
		reportshandler.NewHandler(reportsService, rbacService).RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "err", err)
	}
	slog.Info("server stopped")
}
