package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"sisc-sesau/internal/audit"
	"sisc-sesau/internal/auth"
	"sisc-sesau/internal/db"
	"sisc-sesau/internal/maintenance"
	"sisc-sesau/internal/observability"
	"sisc-sesau/internal/pages"
	"sisc-sesau/internal/user"
)

type Options struct {
	LoadDotEnv    bool
	RunMigrations bool
}

type Runtime struct {
	Handler http.Handler
	Close   func() error
}

// Build wires the whole application. It fails fast on missing required
// configuration: a process without a session signing secret must not start.
func Build(options Options) (*Runtime, error) {
	if options.LoadDotEnv {
		_ = godotenv.Load()
	}

	logger := observability.NewLogger()

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return nil, err
	}
	sessionSecret, err := mustEnv("SESSION_SECRET")
	if err != nil {
		return nil, err
	}

	appEnv := envOrDefault("APP_ENV", "development")
	if err := observability.InitSentry(os.Getenv("SENTRY_DSN"), appEnv); err != nil {
		logger.Error("init_sentry_failed", map[string]any{"error": err.Error()})
	}

	database, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	database.SetMaxOpenConns(envIntOrDefault("DB_MAX_OPEN_CONNS", 10))
	database.SetMaxIdleConns(envIntOrDefault("DB_MAX_IDLE_CONNS", 5))
	database.SetConnMaxLifetime(envMinutesOrDefault("DB_CONN_MAX_LIFETIME_MINUTES", 30))
	database.SetConnMaxIdleTime(envMinutesOrDefault("DB_CONN_MAX_IDLE_TIME_MINUTES", 10))

	if err := database.Ping(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if options.RunMigrations {
		if err := db.RunMigrations(database); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	tokens, err := auth.NewTokenService(sessionSecret, envHoursOrDefault("SESSION_TTL_HOURS", 8))
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	cookies := auth.CookieWriter{
		Secure: EnvBoolOrDefault("COOKIE_SECURE", appEnv == "production"),
		TTL:    tokens.TTL(),
	}

	authRepo := auth.NewRepository(database)
	auditRepo := audit.NewRepository(database)
	recorder := audit.NewSafeRecorder(auditRepo, logger)

	authService := auth.NewService(authRepo, tokens, recorder)
	authService.WithLockoutPolicy(auth.LockoutPolicy{
		FailureThreshold: envIntOrDefault("LOGIN_MAX_ATTEMPTS", 5),
		LockDuration:     envMinutesOrDefault("LOGIN_LOCK_MINUTES", 15),
	})
	authHandler := auth.NewHandler(authService, tokens, cookies)
	gate := auth.NewGate(tokens, cookies)

	userRepo := user.NewRepository(database)
	userHandler := user.NewHandler(userRepo)

	if err := seedAdmin(userRepo); err != nil {
		_ = database.Close()
		return nil, err
	}

	cleanupHandler := maintenance.NewCleanupHandler(
		authRepo,
		auditRepo,
		logger,
		os.Getenv("CRON_SECRET"),
		envDaysOrDefault("AUDIT_RETENTION_DAYS", 90),
		envIntOrDefault("AUDIT_CLEANUP_BATCH_SIZE", 500),
	)

	loginLimiter := auth.NewLoginRateLimiter(
		envIntOrDefault("LOGIN_RATE_LIMIT_MAX", 10),
		envSecondsOrDefault("LOGIN_RATE_LIMIT_WINDOW_SECONDS", 60),
	)

	mux := http.NewServeMux()
	mux.Handle("POST /api/auth/login", loginLimiter.Middleware(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /api/auth/change-password", authHandler.ChangePassword)
	mux.HandleFunc("GET /api/admin/users", userHandler.List)
	mux.HandleFunc("POST /api/admin/users", userHandler.Create)
	mux.HandleFunc("GET /internal/maintenance/cleanup", cleanupHandler.Handle)
	mux.HandleFunc("POST /internal/maintenance/cleanup", cleanupHandler.Handle)
	mux.HandleFunc("GET /health", healthHandler(database))
	mux.HandleFunc("GET /{$}", pages.Home)
	mux.HandleFunc("GET /login", pages.Login)
	mux.HandleFunc("GET /dashboard", pages.Dashboard)
	mux.HandleFunc("GET /force-password-change", pages.ForcePasswordChange)
	mux.HandleFunc("GET /admin", pages.Admin)
	mux.HandleFunc("GET /admin/", pages.Admin)
	mux.HandleFunc("GET /pacientes", pages.Pacientes)
	mux.HandleFunc("GET /agendamentos", pages.Agendamentos)

	handler := observability.RecoverMiddleware(logger,
		observability.RequestLoggingMiddleware(logger,
			gate.Middleware(mux)))

	return &Runtime{
		Handler: handler,
		Close: func() error {
			observability.FlushSentry()
			return database.Close()
		},
	}, nil
}

func seedAdmin(repo *user.Repository) error {
	email := strings.TrimSpace(strings.ToLower(os.Getenv("ADMIN_EMAIL")))
	password := strings.TrimSpace(os.Getenv("ADMIN_PASSWORD"))

	if email == "" && password == "" {
		return nil
	}
	if email == "" || password == "" {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD are required together")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	name := envOrDefault("ADMIN_NAME", "Administrador do Sistema")
	return repo.EnsureSeedAdmin(context.Background(), email, name, hash)
}

func healthHandler(database *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]any{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)}
		if err := database.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body = map[string]any{"status": "degraded", "time": time.Now().UTC().Format(time.RFC3339)}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func mustEnv(name string) (string, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return "", fmt.Errorf("missing required env: %s", name)
	}
	return value, nil
}

func envOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envIntOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envMinutesOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Minute
}

func envHoursOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Hour
}

func envDaysOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * 24 * time.Hour
}

func envSecondsOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Second
}

func EnvBoolOrDefault(name string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if value == "" {
		return fallback
	}

	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
