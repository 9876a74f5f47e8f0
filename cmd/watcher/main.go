package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/zeksm/telegram-to-sql/internal/biz/repo"
	"github.com/zeksm/telegram-to-sql/internal/biz/usecase"
	"github.com/zeksm/telegram-to-sql/internal/conf"
	"github.com/zeksm/telegram-to-sql/internal/data"
	"github.com/zeksm/telegram-to-sql/internal/errlog"
	"github.com/zeksm/telegram-to-sql/internal/infra/telegram"
	"github.com/zeksm/telegram-to-sql/internal/service"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	errs := errlog.New(cfg.ErrorLogPath)

	// Open storage and verify the schema; both tables must exist
	// before anything else runs.
	store, err := data.NewStore(cfg.Storage.DBPath, cfg.Storage.ChatTable, cfg.Storage.MessageTable)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()
	fmt.Printf("[Watcher] Storage ready: %s\n", cfg.Storage.DBPath)

	// Notification sink; empty URL disables it
	var notifier repo.Notifier
	if webhook := data.NewWebhook(cfg.WebhookURL); webhook != nil {
		notifier = webhook
		fmt.Println("[Watcher] Webhook notifications enabled")
	}

	// Platform transport
	client, err := telegram.NewClient(cfg.Telegram.BotToken)
	if err != nil {
		log.Fatalf("Failed to connect to Telegram: %v", err)
	}
	fmt.Println("[Watcher] Telegram client ready")

	// Engine wiring
	registry := usecase.NewRegistry(client, store, errs)
	admins := usecase.NewAdmins(client, cfg.Admin.PageSize)
	classifier := usecase.NewClassifier(registry, admins, client, store, notifier, errs)
	watcher := service.NewWatcher(registry, admins, classifier, client, cfg.Admin.RefreshInterval, errs)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := watcher.Bootstrap(ctx); err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}

	// Feed consumption starts with the listening gate closed so
	// membership changes keep the registry fresh while the operator
	// is still at the console.
	watcher.Start(ctx)

	console := service.NewConsole(registry, classifier, os.Stdin, os.Stdout)
	console.Run(ctx)

	<-ctx.Done()
	fmt.Println("\nShutting down...")
	watcher.Stop()
}
