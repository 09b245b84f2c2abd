package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rg/gatekeeper/internal/bot"
	"github.com/rg/gatekeeper/internal/chatstate"
	"github.com/rg/gatekeeper/internal/cleanup"
	"github.com/rg/gatekeeper/internal/config"
	"github.com/rg/gatekeeper/internal/messaging/telegram"
	"github.com/rg/gatekeeper/internal/security"
	"github.com/rg/gatekeeper/internal/storage"
	"github.com/rg/gatekeeper/internal/welcome"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting gatekeeper bot...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("%s", cfg)

	patterns := cfg.Security.SecretPatterns
	if len(patterns) == 0 {
		patterns = security.DefaultPatterns
	}
	sanitizer, err := security.NewSanitizer(patterns, cfg.Telegram.Token)
	if err != nil {
		log.Fatalf("Failed to initialize sanitizer: %v", err)
	}
	log.Printf("Security sanitizer initialized with %d patterns", len(patterns))

	var journal bot.Journal
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()

	if cfg.Storage.DBPath != "" {
		store, err := storage.NewStorage(cfg.Storage.DBPath)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		defer store.Close()
		journal = store

		retention := storage.NewRetentionWorker(store, cfg.Storage.Retention, cfg.Storage.CleanupInterval)
		go retention.Start(workerCtx)
		log.Printf("Action journal initialized (retention: %v)", cfg.Storage.Retention)
	}

	chats := chatstate.NewStore(chatstate.Settings{
		DeleteJoinNotice:  cfg.ChatDefaults.DeleteJoinNotice,
		DeleteLeaveNotice: cfg.ChatDefaults.DeleteLeaveNotice,
		DeletePinNotice:   cfg.ChatDefaults.DeletePinNotice,
		WelcomeEnabled:    cfg.ChatDefaults.WelcomeEnabled,
		AutoDeleteSeconds: cfg.ChatDefaults.AutoDeleteSeconds,
	})
	log.Printf("Chat state store initialized (defaults: %+v)", chats.Defaults())

	selector, err := welcome.NewSelector(cfg.Welcome.Templates, cfg.Welcome.Mode == config.WelcomeModeRandom, nil)
	if err != nil {
		log.Fatalf("Failed to load welcome templates: %v", err)
	}
	log.Printf("Template selector initialized (%d templates, mode: %s)", selector.Len(), cfg.Welcome.Mode)

	gate := welcome.NewGate(cfg.Share.Link, cfg.Share.Text, cfg.Share.Required)
	log.Printf("Share gate initialized (required shares: %d)", gate.Required())

	platform, err := telegram.NewClient(cfg.Telegram.Token)
	if err != nil {
		log.Fatalf("Failed to create Telegram client: %s", sanitizer.Err(err))
	}
	log.Println("Telegram client initialized")

	scheduler := cleanup.NewScheduler(platform)

	handler := bot.NewHandler(
		platform,
		chats,
		selector,
		gate,
		scheduler,
		sanitizer,
		journal,
		cfg.Telegram.StickerID,
	)
	scheduler.SetDeleteCallback(handler.OnScheduledDelete)

	middleware := bot.NewMiddleware(cfg.Commands.RateLimit, cfg.Commands.RateWindow, sanitizer)
	middleware.StartCleanupWorker()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		slog.Info("Shutting down", "signal", sig.String(), "chats", chats.ChatCount())
		platform.Stop()
	}()

	log.Println("Bot is ready to receive updates!")

	if err := platform.Start(middleware.Logger(middleware.RateLimit(handler.HandleEvent))); err != nil {
		log.Printf("Bot stopped with error: %s", sanitizer.Err(err))
	}

	cancelWorker()
	middleware.Stop()
	scheduler.Stop()
	log.Println("Bot stopped")
}
