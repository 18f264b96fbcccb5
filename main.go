package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avelara/keyauth-be/internal/api"
	"github.com/avelara/keyauth-be/internal/auth"
	"github.com/avelara/keyauth-be/internal/config"
	"github.com/avelara/keyauth-be/internal/database"
	"github.com/avelara/keyauth-be/internal/logger"
	"github.com/avelara/keyauth-be/internal/mailer"
	"github.com/avelara/keyauth-be/internal/monitoring"
	"github.com/avelara/keyauth-be/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(!cfg.IsProd())

	// Set up database
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := database.Connect(ctx, cfg.MongoURI)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Disconnect(ctx)
	}()

	db := client.Database(cfg.MongoDB)

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	err = database.EnsureIndexes(ctx, db)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database indexes")
	}

	// Set up collaborators
	verifier := auth.NewVerifier(auth.Config{
		Secret:     []byte(cfg.JWTSecret),
		SessionTTL: cfg.SessionTTL,
	})
	smtpMailer := mailer.NewSMTP(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
	})

	// Set up services
	userStore := database.NewUserStore(db)
	tokenStore := database.NewResetTokenStore(db)
	userService := services.NewUserService(userStore, verifier)
	resetService := services.NewPasswordResetService(userStore, tokenStore, verifier, smtpMailer, cfg.ClientURL, cfg.ResetTTL)

	// Set up and run the background reset-token reaper
	reaper, err := monitoring.NewReaper(tokenStore, cfg.ReaperSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid reaper schedule")
	}
	go reaper.Run()

	// Set up router
	router := api.NewRouter(userService, resetService, verifier, cfg.ClientURL)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	reaper.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
