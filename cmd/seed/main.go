package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-task-tracker/config"
	"github.com/oksasatya/go-ddd-task-tracker/internal/application"
	"github.com/oksasatya/go-ddd-task-tracker/internal/container"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/apperror"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/helpers"
)

const (
	demoEmail    = "demo@example.com"
	demoPassword = "password123"
)

var demoTasks = []application.CreateTaskInput{
	{Title: "Read the API docs"},
	{Title: "Create a first task", IsCompleted: true},
	{Title: "Mark it done"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	stores, closeStores, err := container.OpenStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer closeStores()

	c, err := container.New(cfg, logger, stores)
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}

	if _, err := c.Sessions.Register(ctx, demoEmail, demoPassword); err != nil {
		if !errors.Is(err, apperror.ErrConflict) {
			log.Fatalf("failed to seed user: %v", err)
		}
		fmt.Printf("user %s already exists, adding tasks only\n", demoEmail)
	}

	u, err := c.Users.FindByEmail(ctx, demoEmail)
	if err != nil {
		log.Fatalf("failed to load demo user: %v", err)
	}
	who := application.Identity{User: *u}

	for _, in := range demoTasks {
		t, err := c.Tasks.Create(ctx, who, in)
		if err != nil {
			log.Fatalf("failed to seed task %q: %v", in.Title, err)
		}
		fmt.Printf("seeded task: id=%d title=%q\n", t.ID, t.Title)
	}
	fmt.Printf("seeded user: id=%d email=%s password=%s\n", who.UserID(), demoEmail, demoPassword)
}
