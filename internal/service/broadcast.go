package service

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"gatekeeper/internal/repository"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// BroadcastConfig identifies where and how the public prompt is posted.
type BroadcastConfig struct {
	ChannelID   int64
	BotUsername string
}

// Broadcast posts the public verification prompt to the channel, editing the
// previously recorded message in place when it still exists. The mutex keeps
// two concurrent /sendverify invocations from racing the pointer.
type Broadcast struct {
	api     TelegramAPI
	pointer repository.PointerRepository
	cfg     BroadcastConfig
	logger  *zap.Logger

	mu sync.Mutex
}

// NewBroadcast creates the prompt broadcaster.
func NewBroadcast(api TelegramAPI, pointer repository.PointerRepository, cfg BroadcastConfig, logger *zap.Logger) *Broadcast {
	return &Broadcast{
		api:     api,
		pointer: pointer,
		cfg:     cfg,
		logger:  logger,
	}
}

// Publish posts or refreshes the verification prompt. An in-place edit of the
// recorded message is attempted first; any edit failure (deleted message,
// permissions, anything else) falls back to posting a new message and moving
// the pointer to it.
func (s *Broadcast) Publish() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := "👋 New here? Verification is required to join.\n\nTap the button below and answer one question."
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.URL("🔐 Verify me", fmt.Sprintf("https://t.me/%s?start=verify", s.cfg.BotUsername)),
	))

	if messageID, ok := s.pointer.Get(); ok {
		stored := tele.StoredMessage{
			MessageID: strconv.Itoa(messageID),
			ChatID:    s.cfg.ChannelID,
		}
		_, err := s.api.Edit(stored, text, markup)
		if err == nil {
			s.logger.Info("Verification prompt updated in place", zap.Int("message_id", messageID))
			return nil
		}
		// Identical content is still a live prompt; nothing to repost.
		if strings.Contains(err.Error(), "message is not modified") {
			s.logger.Debug("Verification prompt unchanged", zap.Int("message_id", messageID))
			return nil
		}
		s.logger.Warn("Failed to edit verification prompt, posting new",
			zap.Int("message_id", messageID),
			zap.Error(err),
		)
	}

	msg, err := s.api.Send(tele.ChatID(s.cfg.ChannelID), text, markup)
	if err != nil {
		return fmt.Errorf("post verification prompt: %w", err)
	}

	s.logger.Info("Verification prompt posted", zap.Int("message_id", msg.ID))
	if err := s.pointer.Set(msg.ID); err != nil {
		// Store already logged; next publish will just post a duplicate.
		return nil
	}
	return nil
}
