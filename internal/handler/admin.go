package handler

import (
	"context"
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleSendVerify handles /sendverify: (re)post the public verification
// prompt. Admin only.
func (h *Handler) handleSendVerify(c tele.Context) error {
	if !h.isAdmin(c) {
		return c.Send("🚫 This command is for the admin only.")
	}

	if err := h.broadcast.Publish(); err != nil {
		h.logger.Error("Failed to publish verification prompt", zap.Error(err))
		return c.Send("Failed to post the verification prompt: " + err.Error())
	}
	return c.Send("Verification prompt is up to date.")
}

// handleChat handles /chat <text>: a one-shot completion query. Admin only.
func (h *Handler) handleChat(c tele.Context) error {
	if !h.isAdmin(c) {
		return c.Send("🚫 This command is for the admin only.")
	}

	prompt := strings.TrimSpace(c.Message().Payload)
	if prompt == "" {
		return c.Send("Usage: /chat <text>")
	}

	return c.Send(h.chat.Respond(context.Background(), prompt))
}
