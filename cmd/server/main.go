package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/sumire/tracker/internal/config"
	"github.com/sumire/tracker/internal/handler"
	"github.com/sumire/tracker/internal/migrations"
	"github.com/sumire/tracker/internal/repository"
	"github.com/sumire/tracker/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("database connected")

	if cfg.MigrateOnStart {
		if err := migrations.Up(db.DB); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("migrations applied")
	}

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	authSvc := service.NewAuthService(userRepo, sessionRepo, cfg.SessionTTL)
	projectSvc := service.NewProjectService(projectRepo)
	issueSvc := service.NewIssueService(issueRepo, projectRepo, userRepo)
	userSvc := service.NewUserService(userRepo)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := userSvc.Bootstrap(context.Background(), "Admin", cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		if created {
			slog.Info("bootstrap admin created", "email", cfg.AdminEmail)
		}
	}

	authHandler := handler.NewAuthHandler(authSvc, cfg.SecureCookies)
	projectHandler := handler.NewProjectHandler(projectSvc)
	issueHandler := handler.NewIssueHandler(issueSvc)
	userHandler := handler.NewUserHandler(userSvc)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewAppValidator()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(cfg.Debug)

	e.Use(echomw.RequestID())
	e.Use(handler.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAccept, echo.HeaderContentType, handler.CSRFHeaderName},
		ExposeHeaders:    []string{echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.POST("/login", authHandler.Login)
	e.POST("/logout", authHandler.Logout, handler.SessionAuth(authSvc), handler.CSRF())
	e.GET("/whoami", authHandler.Whoami)

	api := e.Group("/api", handler.SessionAuth(authSvc), handler.CSRF())
	api.GET("/me", authHandler.Me)

	api.GET("/projects", projectHandler.List)
	api.POST("/projects", projectHandler.Create)
	api.GET("/projects/:key", projectHandler.Get)

	api.GET("/projects/:key/issues", issueHandler.List)
	api.POST("/projects/:key/issues", issueHandler.Create)
	api.GET("/projects/:key/issues/:id", issueHandler.Get)
	api.PATCH("/projects/:key/issues/:id", issueHandler.Update)

	api.GET("/users", userHandler.Directory)

	admin := api.Group("/admin", handler.RequireAdmin())
	admin.GET("/users", userHandler.AdminList)
	admin.POST("/users", userHandler.AdminCreate)
	admin.PATCH("/users/:id", userHandler.AdminUpdate)

	if cfg.StaticDir != "" {
		e.Use(echomw.StaticWithConfig(echomw.StaticConfig{
			Root:  cfg.StaticDir,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return strings.HasPrefix(p, "/api") || p == "/login" || p == "/logout" || p == "/whoami"
			},
		}))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
