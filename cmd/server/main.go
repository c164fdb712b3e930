package main

import (
	"log"
	"net/http"

	_ "portal/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"portal/internal/auth"
	"portal/internal/cache"
	"portal/internal/config"
	"portal/internal/db"
	"portal/internal/handler"
	"portal/internal/mail"
	"portal/internal/model"
	"portal/internal/repository"
	"portal/internal/router"
	"portal/internal/service"
	"portal/internal/storage"
)

// @title Client Report Portal API
// @version 1.0
// @description Report portal with OTP client login, admin password login, versioned report uploads, and per-client visibility.
// @host localhost:8080
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.AllowedClient{},
		&model.Project{},
		&model.Report{},
		&model.Comment{},
		&model.OtpChallenge{},
		&model.LoginEvent{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	store, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("storage init: %v", err)
	}

	// Initialize repositories
	clientRepo := repository.NewClientRepository(gormDB)
	projectRepo := repository.NewProjectRepository(gormDB)
	reportRepo := repository.NewReportRepository(gormDB)
	commentRepo := repository.NewCommentRepository(gormDB)
	otpRepo := repository.NewOTPRepository(gormDB)
	loginRepo := repository.NewLoginEventRepository(gormDB)

	// Initialize auth and mail components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	sender := mail.NewSMTPSender(cfg)

	// Initialize services
	authService := service.NewAuthService(cfg, clientRepo, otpRepo, loginRepo, jwtService, sender)
	clientService := service.NewClientService(clientRepo, store, cacheClient)
	projectService := service.NewProjectService(cfg, projectRepo, reportRepo, clientRepo, store, cacheClient)
	commentService := service.NewCommentService(commentRepo, reportRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	clientHandler := handler.NewClientHandler(clientService)
	projectHandler := handler.NewProjectHandler(projectService)
	commentHandler := handler.NewCommentHandler(commentService)

	// Register routes
	router.Register(
		e,
		cfg,
		authHandler,
		clientHandler,
		projectHandler,
		commentHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
