package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/taskmanager/taskmanager-api/internal/config"
	"github.com/taskmanager/taskmanager-api/internal/database"
	"github.com/taskmanager/taskmanager-api/internal/logging"
	"github.com/taskmanager/taskmanager-api/internal/mailer"
	"github.com/taskmanager/taskmanager-api/internal/router"
	"github.com/taskmanager/taskmanager-api/internal/services"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env is fine; the environment may already be populated
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := logging.New("taskmanager-api", cfg.LogLevel, os.Stdout)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db, log); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	// Initialize AI service
	var suggester services.TaskSuggester
	if cfg.OpenAIAPIKey != "" {
		suggester = services.NewAIService(cfg.OpenAIAPIKey)
	} else {
		log.Info("OPENAI_API_KEY not set, task suggestions disabled")
	}

	app := router.New(router.Dependencies{
		Config:    cfg,
		DB:        db,
		Log:       log,
		Mailer:    mailer.NewSMTPMailer(cfg.Mail, cfg.FrontendURL),
		Suggester: suggester,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
	app.Shutdown()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("server stopped")
}
