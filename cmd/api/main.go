package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"orbo/internal/app"
	"orbo/internal/config"
	"orbo/internal/database"
	"orbo/internal/logger"
	"orbo/internal/validator"

	_ "orbo/internal/docs" // Import swagger docs
)

// @title           Orbo API
// @version         1.0
// @description     Orbo keeps Telegram community state in sync: admin rights, chat migrations and participant records.

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey CronSecret
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the CRON_SECRET value.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.CronSecret == "" {
		log.Warn("CRON_SECRET not set, scheduled endpoints will answer 503")
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	svcs, err := app.NewServices(dbManager.DB(), appConfig)
	if err != nil {
		return err
	}
	defer func() {
		if err := svcs.Close(); err != nil {
			log.Warnw("failed to close event publisher", "error", err)
		}
	}()

	validator.Register()

	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := app.NewRouter(svcs, appConfig)

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Orbo server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
