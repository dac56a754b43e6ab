package main

import (
	"context"
	"flag"

	"go.uber.org/zap"

	"docscan/internal/config"
	"docscan/internal/db"
	"docscan/internal/logger"
	"docscan/internal/repository"
	"docscan/internal/service"
)

func main() {
	force := flag.Bool("force", false, "reset password and credits when the admin already exists")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	_ = logger.Init(cfg.LogLevel)
	defer logger.Sync()

	// Connect to database
	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Fatal("connect to database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	store := repository.NewStore(gormDB)
	outcome, err := service.EnsureAdmin(context.Background(), store.Users(), service.AdminSeed{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Credits:  cfg.AdminCredits,
		Force:    *force,
	})
	if err != nil {
		logger.Fatal("seed admin", zap.String("username", cfg.AdminUsername), zap.Error(err))
	}

	switch outcome {
	case service.SeedSkipped:
		logger.Info("admin user already exists, use -force to reset it", zap.String("username", cfg.AdminUsername))
	default:
		logger.Info("admin user seeded",
			zap.String("username", cfg.AdminUsername),
			zap.String("outcome", string(outcome)),
			zap.Int("credits", cfg.AdminCredits))
	}
}
