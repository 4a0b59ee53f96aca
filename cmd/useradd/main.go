package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/Raymond9734/acme-dashboard-backend/internal/auth"
	"github.com/Raymond9734/acme-dashboard-backend/internal/config"
	"github.com/Raymond9734/acme-dashboard-backend/internal/db"
	"github.com/Raymond9734/acme-dashboard-backend/internal/models"
	"github.com/Raymond9734/acme-dashboard-backend/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	name := flag.String("name", "", "display name")
	email := flag.String("email", "", "sign-in email")
	password := flag.String("password", "", "sign-in password, at least 6 characters")
	flag.Parse()

	if *name == "" || *email == "" || len(*password) < 6 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	database, err := db.New(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		logger.Error("failed to hash password", slog.String("error", err.Error()))
		os.Exit(1)
	}

	user := &models.User{Name: *name, Email: *email, PasswordHash: hash}
	if err := repository.NewUserRepository(database.DB).Create(ctx, user); err != nil {
		logger.Error("failed to create user", slog.String("email", *email), slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("user created", slog.String("user_id", user.ID), slog.String("email", user.Email))
}
