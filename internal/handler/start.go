package handler

import (
	"errors"

	"gatekeeper/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleStart handles /start: a user-initiated verification in a private chat.
func (h *Handler) handleStart(c tele.Context) error {
	if c.Chat() == nil || c.Chat().Type != tele.ChatPrivate {
		return nil
	}
	userID := c.Sender().ID

	h.logger.Info("User started verification",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	question, err := h.verification.Begin(userID)
	switch {
	case errors.Is(err, domain.ErrAlreadyVerified):
		return c.Send("✅ You are already verified.")
	case errors.Is(err, domain.ErrSessionExists):
		return c.Send("Verification is already in progress. Answer the question I sent you, or wait for the admin's decision.")
	case err != nil:
		h.logger.Error("Failed to start verification", zap.Int64("user_id", userID), zap.Error(err))
		return c.Send("Something went wrong. Please try again later.")
	}

	return c.Send("Welcome! One question before you can join:\n\n" + question)
}
