package handler

import (
	"gatekeeper/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Handler wires inbound Telegram events to the verification workflow, the
// broadcaster and the chat responder.
type Handler struct {
	bot          *tele.Bot
	verification *service.Verification
	broadcast    *service.Broadcast
	chat         *service.Chat
	adminID      int64
	logger       *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	verification *service.Verification,
	broadcast *service.Broadcast,
	chat *service.Chat,
	adminID int64,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:          bot,
		verification: verification,
		broadcast:    broadcast,
		chat:         chat,
		adminID:      adminID,
		logger:       logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/sendverify", h.handleSendVerify)
	h.bot.Handle("/chat", h.handleChat)

	// Text messages (verification answers and free-form chat)
	h.bot.Handle(tele.OnText, h.handleText)

	// Media posts mean nothing to the bot, but group middleware only runs
	// for updates that reach a handler; without this the topic guard would
	// never see photos or stickers in the restricted topic.
	h.bot.Handle(tele.OnMedia, func(c tele.Context) error { return nil })

	// Callback queries (admin decision buttons)
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

func (h *Handler) isAdmin(c tele.Context) bool {
	return c.Sender() != nil && c.Sender().ID == h.adminID
}
