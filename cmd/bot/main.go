package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gatekeeper/internal/config"
	"gatekeeper/internal/handler"
	"gatekeeper/internal/llm"
	"gatekeeper/internal/middleware"
	"gatekeeper/internal/repository/jsonfile"
	"gatekeeper/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Gatekeeper Bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully")

	if !cfg.ChatEnabled() {
		logger.Warn("GEMINI_API_KEY is not set, chat responder is disabled")
	}
	if !cfg.AutoInviteEnabled() {
		logger.Warn("GROUP_ID is not set, auto-invite is disabled")
	}
	if !cfg.TopicGuardEnabled() {
		logger.Warn("TOPIC_ID is not set, topic restriction is disabled")
	}

	// Load persisted documents
	verifiedStore := jsonfile.NewVerifiedStore(filepath.Join(cfg.DataDir, "verified_users.json"), logger)
	pointerStore := jsonfile.NewPointerStore(filepath.Join(cfg.DataDir, "last_message.json"), logger)
	referenceStore := jsonfile.NewReferenceStore(filepath.Join(cfg.DataDir, "reference.json"), logger)

	logger.Info("Persistent stores loaded", zap.Int("verified_users", verifiedStore.Count()))

	// Initialize completion service (optional)
	var completer service.Completer
	if cfg.ChatEnabled() {
		gemini, err := llm.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Fatal("Failed to create Gemini client", zap.Error(err))
		}
		completer = gemini
		logger.Info("Gemini client initialized", zap.String("model", cfg.GeminiModel))
	}

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			// Per-event boundary: log and keep serving.
			logger.Error("Unhandled handler error", zap.Error(err))
		},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Telegram bot initialized")

	// Initialize services
	registry := service.NewRegistry(verifiedStore, logger)
	verification := service.NewVerification(bot, registry, verifiedStore, referenceStore, service.VerificationConfig{
		AdminID:         cfg.AdminID,
		GroupID:         cfg.GroupID,
		GroupInviteLink: cfg.GroupInviteLink,
	}, logger)
	broadcast := service.NewBroadcast(bot, pointerStore, service.BroadcastConfig{
		ChannelID:   cfg.ChannelID,
		BotUsername: cfg.BotUsername,
	}, logger)
	chat := service.NewChat(completer, referenceStore, logger)

	// Middleware
	bot.Use(middleware.Recover(logger))
	if cfg.TopicGuardEnabled() {
		bot.Use(middleware.TopicGuard(cfg.ChannelID, cfg.TopicID, cfg.AdminID, logger))
	}

	// Initialize handler
	h := handler.NewHandler(bot, verification, broadcast, chat, cfg.AdminID, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	// Start janitor in background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go runJanitor(ctx, registry, cfg.PendingTTL, logger)

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	bot.Stop()
	cancel()

	logger.Info("Bot stopped gracefully")
}

// runJanitor periodically expires stale verification sessions and pending
// approvals. A zero ttl keeps the original keep-forever behavior.
func runJanitor(ctx context.Context, registry *service.Registry, ttl time.Duration, logger *zap.Logger) {
	if ttl <= 0 {
		logger.Info("PENDING_TTL is not set, stale entries are kept forever")
		return
	}

	ticker := time.NewTicker(ttl / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Janitor stopped")
			return
		case <-ticker.C:
			if expired := registry.ExpireStale(ttl); len(expired) > 0 {
				logger.Info("Janitor expired verification entries", zap.Int("count", len(expired)))
			}
		}
	}
}
