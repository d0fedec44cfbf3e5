package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-auth-service/config"
	"github.com/oksasatya/go-auth-service/internal/application"
	"github.com/oksasatya/go-auth-service/internal/container"
	"github.com/oksasatya/go-auth-service/internal/domain/apperror"
	"github.com/oksasatya/go-auth-service/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	ctx := context.Background()
	c, err := container.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to initialize dependencies: %v", err)
	}
	defer c.Close()

	name := "demoUser"
	email := "demo@example.com"
	password := "password123"

	id, err := c.Auth.Register(ctx, application.RegisterInput{Name: name, Email: email, Password: password})
	switch {
	case errors.Is(err, apperror.ErrConflict):
		fmt.Printf("already seeded: name=%s\n", name)
	case err != nil:
		log.Fatalf("failed to seed user: %v", err)
	default:
		fmt.Printf("seeded user: id=%d email=%s name=%s password=%s\n", id, email, name, password)
	}
}
