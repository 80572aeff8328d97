package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsorship-backoffice/internal/authz"
	"github.com/yukikurage/sponsorship-backoffice/internal/config"
	"github.com/yukikurage/sponsorship-backoffice/internal/constants"
	"github.com/yukikurage/sponsorship-backoffice/internal/database"
	"github.com/yukikurage/sponsorship-backoffice/internal/handlers"
	"github.com/yukikurage/sponsorship-backoffice/internal/logger"
	"github.com/yukikurage/sponsorship-backoffice/internal/middleware"
	"github.com/yukikurage/sponsorship-backoffice/internal/repository"
	"github.com/yukikurage/sponsorship-backoffice/internal/services"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zl := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("Server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	gin.SetMode(cfg.App.GinMode)

	db, err := database.Connect(cfg.Database, zl)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, zl); err != nil {
		return err
	}

	ctx := context.Background()
	if err := database.SeedRoles(ctx, db, cfg.Authz.ManageRoles); err != nil {
		return err
	}

	// Repositories
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	catalog := services.NewCatalogService(repository.NewTaskObjectTypeRepository(db), cfg.Catalog.CatchAllCode, zl)
	if cfg.Catalog.SeedOnStart {
		if err := catalog.Seed(ctx); err != nil {
			return err
		}
	}
	targets := services.NewTargetResolver(
		repository.NewBeneficiaryPool(db),
		repository.NewReferentPool(db),
		repository.NewSponsorPool(db),
	)
	taskService := services.NewTaskService(taskRepo, userRepo, catalog, targets, zl)
	commentService := services.NewCommentService(taskService, repository.NewCommentRepository(db), zl)
	authService := services.NewAuthService(userRepo)
	gate := authz.NewGate(cfg.Authz.ManageRoles)

	// Session store
	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	store, err := redisStore.NewStore(
		10,    // Redis pool size
		"tcp", // network type
		redisAddr,
		"", // username (empty for default user)
		cfg.Redis.Password,
		[]byte(cfg.Session.Secret),
	)
	if err != nil {
		return fmt.Errorf("failed to create Redis store: %w", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Session.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	middleware.SetupValidator()

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		logger.GinMiddleware(zl),
		logger.Recovery(zl),
		sessions.Sessions(cfg.Session.CookieName, store),
	)

	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:    handlers.NewAuthHandler(authService, gate),
		Tasks:   handlers.NewTaskHandler(taskService, commentService, targets),
		Catalog: handlers.NewCatalogHandler(catalog),
		Reports: handlers.NewReportHandler(services.NewReportService(taskRepo, targets)),
		Users:   handlers.NewUserHandler(services.NewUserService(userRepo)),
	}, middleware.RequireAuth(authService, gate))

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("Server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case sig := <-quit:
		zl.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
