package main

import (
	"context"
	"errors"
	"fmt"

	"lexdraft-backend/config"
	"lexdraft-backend/logger"
	"lexdraft-backend/models"
	"lexdraft-backend/repository"
	"lexdraft-backend/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, loaded := config.Load()
	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	if !loaded {
		log.Warn("No .env file found, using environment variables")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer pool.Close()

	users := repository.NewUserRepository(pool)

	email := "advogado@example.com"
	password := "testpassword123"
	oabNumber, oabState := "123456", "SP"

	existing, err := users.GetByEmail(ctx, email)
	if err == nil {
		log.Info("User already exists", "email", email, "id", existing.ID)
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		log.Fatal("Failed to look up user", "error", err)
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		log.Fatal("Failed to hash password", "error", err)
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Advogado de Teste",
		OABNumber:    &oabNumber,
		OABState:     &oabState,
	}
	if err := users.Create(ctx, user); err != nil {
		log.Fatal("Failed to create user", "error", err)
	}

	fmt.Printf("Test user created\n")
	fmt.Printf("   ID: %s\n", user.ID)
	fmt.Printf("   Email: %s\n", email)
	fmt.Printf("   Password: %s\n", password)
}
