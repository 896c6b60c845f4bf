package middleware

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Recover is the outermost per-event boundary: a panic in any handler is
// logged and swallowed so the bot keeps serving subsequent updates.
func Recover(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Handler panicked",
						zap.Any("panic", r),
						zap.Stack("stack"),
					)
				}
			}()
			return next(c)
		}
	}
}

// TopicGuard deletes non-admin messages posted into the restricted topic of
// the public channel. Deletion is best-effort; a failure only gets a log line.
// It covers every message kind with a registered handler (text plus the
// media catch-all); service messages and polls pass through untouched.
func TopicGuard(channelID int64, topicID int, adminID int64, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			msg := c.Message()
			if msg == nil || c.Chat() == nil {
				return next(c)
			}
			if c.Chat().ID != channelID || msg.ThreadID != topicID {
				return next(c)
			}
			if c.Sender() != nil && c.Sender().ID == adminID {
				return next(c)
			}

			logger.Info("Deleting message from restricted topic",
				zap.Int("message_id", msg.ID),
				zap.Int64("sender_id", senderID(c)),
			)
			if err := c.Delete(); err != nil {
				logger.Warn("Failed to delete message from restricted topic",
					zap.Int("message_id", msg.ID),
					zap.Error(err),
				)
			}
			return nil
		}
	}
}

func senderID(c tele.Context) int64 {
	if c.Sender() == nil {
		return 0
	}
	return c.Sender().ID
}
