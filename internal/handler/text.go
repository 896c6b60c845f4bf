package handler

import (
	"context"
	"errors"
	"strings"

	"gatekeeper/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleText handles non-command text in private chats. While a verification
// session is open the text is the challenge answer; otherwise it goes to the
// chat responder.
func (h *Handler) handleText(c tele.Context) error {
	if c.Chat() == nil || c.Chat().Type != tele.ChatPrivate {
		return nil
	}

	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	// Ignore commands (starting with /)
	if text == "" || strings.HasPrefix(text, "/") {
		return nil
	}

	err := h.verification.Submit(userID, text)
	if err == nil {
		return c.Send("Thanks! Your answer has been sent to the admin for review.")
	}
	if !errors.Is(err, domain.ErrNoActiveSession) {
		h.logger.Error("Failed to submit answer", zap.Int64("user_id", userID), zap.Error(err))
		return c.Send("Something went wrong. Please try again later.")
	}

	// No open session: treat the text as a free-form question.
	return c.Send(h.chat.Respond(context.Background(), text))
}
