package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-survey-admin/internal/config"
	"go-survey-admin/internal/database"
	"go-survey-admin/internal/handler"
	"go-survey-admin/internal/logger"
	"go-survey-admin/internal/middleware"
	"go-survey-admin/internal/repository"
	"go-survey-admin/internal/router"
	"go-survey-admin/internal/service"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	server *http.Server
	db     *database.DB
}

// New loads configuration, prepares the database and wires every layer.
// Migrations and seeding finish before New returns, so the server never
// answers a request against an unseeded database.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.SetDefault(logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel))

	if cfg.MigrateOnStart {
		slog.Info("applying database migrations")
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	db, err := database.New(ctx, cfg.DatabaseURL, database.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	appRouter, err := NewHandler(ctx, cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		ReadTimeout:       cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{server: server, db: db}, nil
}

// NewHandler seeds the database when configured and returns the fully
// wired HTTP handler.
func NewHandler(ctx context.Context, cfg *config.Config, db *database.DB) (http.Handler, error) {
	tx := database.NewTransactor(db.SQL)
	userRepo := repository.NewUserRepository(db.SQL)
	roleRepo := repository.NewRoleRepository(db.SQL)
	surveyRepo := repository.NewSurveyRepository(db.SQL)
	programRepo := repository.NewProgramRepository(db.SQL)
	auditRepo := repository.NewAuditRepository(db.SQL)

	hasher := service.NewBcryptHasher(cfg.BcryptCost)

	if cfg.SeedOnStart {
		if err := service.NewBootstrapService(roleRepo, userRepo, hasher, tx, cfg.SeedPassword).Seed(ctx); err != nil {
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	codec, err := service.NewTokenCodec(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	authService, err := service.NewAuthService(userRepo, hasher, codec, cfg.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}

	auditService := service.NewAuditService(auditRepo)
	userService := service.NewUserService(userRepo, roleRepo, hasher, tx, auditService)
	surveyService := service.NewSurveyService(surveyRepo, tx, auditService)
	programService := service.NewProgramService(programRepo, tx, auditService)

	authMiddleware := middleware.NewAuthMiddleware(codec, authService, service.TokenRejectReason)

	return router.New(cfg, authMiddleware, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Users:   handler.NewUserHandler(userService),
		Surveys: handler.NewSurveyHandler(surveyService),
		Program: handler.NewProgramHandler(programService),
		Audit:   handler.NewAuditHandler(auditService),
		Health:  handler.NewHealthHandler(db),
		Docs:    handler.NewDocsHandler(cfg.OpenAPISpecPath),
	}), nil
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func (a *App) Run() error {
	defer a.db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
