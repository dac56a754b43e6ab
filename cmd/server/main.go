package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"docscan/docs"
	"docscan/internal/auth"
	"docscan/internal/cache"
	"docscan/internal/config"
	"docscan/internal/db"
	"docscan/internal/events"
	"docscan/internal/handler"
	"docscan/internal/logger"
	"docscan/internal/repository"
	"docscan/internal/router"
	"docscan/internal/service"
	"docscan/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Document Scanner API
// @version 1.0
// @description Upload text documents, find the most similar stored document, and manage daily scan credits.
// @host localhost:5000
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		logger.Warn("invalid log level, logging disabled", zap.String("level", cfg.LogLevel), zap.Error(err))
	}
	defer logger.Sync()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Fatal("database init", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			logger.Fatal("reset database", zap.Error(err))
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		logger.Warn("redis unavailable, token revocation and reset lock disabled", zap.Error(err))
	}

	documents, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		logger.Fatal("upload directory", zap.String("dir", cfg.UploadDir), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := events.NewHub()
	go hub.Run(ctx)

	// Initialize repositories
	store := repository.NewStore(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	calendar := service.NewCalendar(cfg.Location)
	ledger := service.NewLedgerService(store, cfg.DefaultCredits, calendar)
	authService := service.NewAuthService(store.Users(), jwtService, tokenStore, cfg.DefaultCredits)
	userService := service.NewUserService(store.Users(), ledger)
	creditService := service.NewCreditRequestService(store, ledger, hub, cfg.CreditRequestAmount)
	scanService := service.NewScanService(store, ledger, documents, hub, service.ScanOptions{
		MaxDocumentBytes: cfg.MaxDocumentBytes,
		Timeout:          cfg.ScanTimeout,
	})
	analyticsService := service.NewAnalyticsService(store, calendar)

	go service.NewResetWorker(ledger, cacheClient, cfg.CreditResetInterval).Run(ctx)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, jwtService, authService, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Scan:      handler.NewScanHandler(scanService, cfg.MaxDocumentBytes),
		Credit:    handler.NewCreditHandler(creditService),
		Analytics: handler.NewAnalyticsHandler(analyticsService),
		Events:    handler.NewEventsHandler(hub),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	logger.Info("swagger documentation available", zap.String("url", swaggerURL(cfg)))

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("server starting", zap.String("addr", addr), zap.String("db_driver", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// swaggerURL accepts SWAGGER_HOST with or without a scheme.
func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimSuffix(host, "/") + "/swagger/index.html"
}
