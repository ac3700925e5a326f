package main

import (
	"os"

	"github.com/spedigo-next/internal/config"
	"github.com/spedigo-next/internal/logger"
	"github.com/spedigo-next/internal/models"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("failed to migrate database: %v", err)
	}

	username := os.Getenv("SG_DEFAULT_OPERATOR_USERNAME")
	password := os.Getenv("SG_DEFAULT_OPERATOR_PASSWORD")
	if err := models.InitDefaultOperator(username, password); err != nil {
		stdLog.Fatalf("failed to create default operator: %v", err)
	}

	stdLog.Printf("seed complete")
}
