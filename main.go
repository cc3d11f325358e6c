package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hireready/hireready/repository"
	"github.com/hireready/hireready/services"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Setup structured logging with JSON format
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config := services.LoadConfig()

	server := services.NewServer(config)

	if config.Database.URL != "" {
		pool, err := pgxpool.New(context.Background(), config.Database.URL)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		gormDB, err := gorm.Open(postgres.New(postgres.Config{
			Conn: stdlib.OpenDBFromPool(pool),
		}), &gorm.Config{})
		if err != nil {
			slog.Error("Failed to initialize ORM", "error", err)
			os.Exit(1)
		}

		repo, err := repository.NewRepository(gormDB)
		if err != nil {
			slog.Error("Failed to initialize repository", "error", err)
			os.Exit(1)
		}

		server.SetDatabase(repo, pool)
		slog.Info("Connected to database")
	} else {
		slog.Warn("Database URL not configured, running without database")
	}

	if err := server.InitializeServices(); err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	server.Start()
}
