package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-task-tracker/config"
	"github.com/oksasatya/go-ddd-task-tracker/internal/container"
	"github.com/oksasatya/go-ddd-task-tracker/internal/router"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/helpers"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	stores, closeStores, err := container.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to open storage")
	}
	defer closeStores()

	c, err := container.New(cfg, logger, stores)
	if err != nil {
		logger.WithError(err).Fatal("failed to build application")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(c),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
		return
	}
	logger.Info("server exited properly")
}
