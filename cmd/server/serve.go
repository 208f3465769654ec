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
	"github.com/spf13/cobra"

	"studentnest/internal/accounts"
	"studentnest/internal/api"
	"studentnest/internal/auth"
	"studentnest/internal/geocoding"
	"studentnest/internal/lifecycle"
	"studentnest/internal/listings"
	"studentnest/internal/models"
	"studentnest/internal/notify"
	"studentnest/internal/processor"
	"studentnest/internal/queue"
	"studentnest/internal/search"
	"studentnest/internal/telegram"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg, logger, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Error("Failed to run database migrations")
		return err
	}

	// External notification sinks
	var forwarders []processor.Forwarder
	var telegramService *telegram.Service
	if cfg.Notifications.TelegramBotToken != "" {
		telegramService = telegram.NewService(logger)
		telegramService.UpdateConfig(&models.TelegramConfig{
			IsEnabled: true,
			BotToken:  cfg.Notifications.TelegramBotToken,
			ChatID:    cfg.Notifications.TelegramChatID,
		})
		forwarders = append(forwarders, telegramService)
		logger.Info("Telegram forwarding enabled")
	}
	if cfg.Notifications.RedisAddr != "" {
		publisher := notify.NewRedisPublisher(cfg.Notifications.RedisAddr, cfg.Notifications.RedisChannel, logger)
		defer publisher.Close()
		forwarders = append(forwarders, publisher)
	}

	// Notifications are stored and forwarded off the request path
	notificationQueue := queue.NewNotificationQueue(cfg.Notifications.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(db.GetDB(), notificationQueue, cfg, logger, forwarders...)
	batchProcessor.Start()
	defer batchProcessor.Stop()

	policy := auth.NewPolicy(cfg.Auth.AdminOverride)
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	listingService := listings.NewService(db.GetDB(), policy, logger)
	if cfg.Geocoding.Enabled {
		listingService.SetLocator(geocoding.NewGeocoder(logger, cfg.Geocoding.BaseURL, cfg.Geocoding.CacheDir))
		logger.Info("Address geocoding enabled")
	}

	handler := api.NewHandler(db, api.Services{
		Listings:      listingService,
		Accounts:      accounts.NewService(db.GetDB(), logger),
		Lifecycle:     lifecycle.NewManager(db.GetDB(), notify.NewQueueNotifier(notificationQueue), policy, cfg.Lifecycle.StrictTransitions, logger),
		Search:        search.NewComposer(db.GetDB(), logger, cfg.Search.PageSize, cfg.Search.MaxPageSize),
		Notifications: notify.NewStore(db.GetDB(), logger),
		Telegram:      telegramService,
	}, logger)

	gin.SetMode(cfg.Server.Mode)
	router := api.NewRouter(handler, issuer, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("Server failed to start")
			return err
		}
	case sig := <-stop:
		logger.WithField("signal", sig.String()).Info("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
		return err
	}
	return nil
}
