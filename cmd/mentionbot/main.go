package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Kotliarevtsev/mentionbot/internal/config"
	"github.com/Kotliarevtsev/mentionbot/internal/handlers"
	"github.com/Kotliarevtsev/mentionbot/internal/metrics"
	"github.com/Kotliarevtsev/mentionbot/internal/models"
	"github.com/Kotliarevtsev/mentionbot/internal/repository/postgres"
	"github.com/Kotliarevtsev/mentionbot/internal/service"
	"github.com/Kotliarevtsev/mentionbot/internal/telegram"
	"github.com/Kotliarevtsev/mentionbot/pkg/logger"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	l.Info("Starting mentionbot...")

	// Database
	db, err := config.NewDatabase(cfg.DatabaseURL, l)
	if err != nil {
		l.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate("migrations"); err != nil {
		l.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	configRepo := postgres.NewChatConfigRepository(db.DB)
	memberRepo := postgres.NewMemberRepository(db.DB)

	// Telegram bot (also serves as admin lookup and outbound sender)
	bot, err := telegram.NewBot(cfg.TelegramToken, l)
	if err != nil {
		l.Fatalf("Failed to create Telegram bot: %v", err)
	}

	// Service layer
	svc := service.New(l, configRepo, memberRepo, bot)

	// Basic commands
	bot.RegisterCommand("start", handlers.NewStartHandler(l))
	bot.RegisterCommand("help", handlers.NewHelpHandler(l))
	bot.RegisterCommand("ping", handlers.NewPingHandler(l))

	// Broadcast commands
	bot.RegisterCommand("all", handlers.NewAllHandler(svc, l))
	bot.RegisterCommand("stopall", handlers.NewStopHandler(svc, l))

	// Settings commands
	bot.RegisterCommand("settings", handlers.NewSettingsHandler(svc, l))
	bot.RegisterCommand("onlyadmins", handlers.NewOnlyAdminsHandler(svc, l, true))
	bot.RegisterCommand("noonlyadmins", handlers.NewOnlyAdminsHandler(svc, l, false))
	bot.RegisterCommand("copymessage", handlers.NewCopyMessageHandler(svc, l, true))
	bot.RegisterCommand("nocopymessage", handlers.NewCopyMessageHandler(svc, l, false))
	bot.RegisterCommand("emptytagtype", handlers.NewTagStyleHandler(svc, l, models.TagStyleEmpty))
	bot.RegisterCommand("emojitagtype", handlers.NewTagStyleHandler(svc, l, models.TagStyleEmoji))
	bot.RegisterCommand("nametagtype", handlers.NewTagStyleHandler(svc, l, models.TagStyleName))

	// Roster ingestion
	bot.RegisterActivityHandler(handlers.NewActivityHandler(svc, l))
	bot.RegisterMembershipHandler(handlers.NewMembershipHandler(svc, l))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		l.Info("Received shutdown signal...")
		cancel()
	}()

	// Metrics and health endpoint
	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metrics.NewServer(l).Handler(),
	}

	go func() {
		l.Infof("Metrics server listening on :%s", cfg.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("Metrics server error: %v", err)
		}
	}()

	// Start Telegram bot polling
	go func() {
		if err := bot.Start(ctx); err != nil {
			l.Errorf("Bot error: %v", err)
		}
	}()

	l.Info("mentionbot started successfully")

	<-ctx.Done()

	l.Info("Shutting down metrics server...")
	metricsServer.Close()

	l.Info("mentionbot stopped")
}
