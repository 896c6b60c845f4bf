package service

import (
	"context"
	"fmt"

	"gatekeeper/internal/repository"

	"go.uber.org/zap"
)

// Completer is the completion-service boundary. internal/llm implements it
// with Gemini.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Fixed responses for the two degraded modes. Callers never see an error.
const (
	ChatDisabledText    = "The assistant is not configured on this bot."
	ChatUnavailableText = "The assistant is temporarily unavailable, please try again later."
)

// Chat answers free-form questions through the completion service. It reads
// no verification state and writes none.
type Chat struct {
	completer Completer // nil when the service is not configured
	reference repository.ReferenceRepository
	logger    *zap.Logger
}

// NewChat creates the chat responder. Pass a nil completer to disable it.
func NewChat(completer Completer, reference repository.ReferenceRepository, logger *zap.Logger) *Chat {
	return &Chat{
		completer: completer,
		reference: reference,
		logger:    logger,
	}
}

// Enabled reports whether a completion service is configured.
func (s *Chat) Enabled() bool {
	return s.completer != nil
}

// Respond returns the completion for prompt. It never fails: with no
// completer configured it returns the fixed disabled text without touching
// the network, and on a service error it returns the fixed unavailable text.
func (s *Chat) Respond(ctx context.Context, prompt string) string {
	if s.completer == nil {
		return ChatDisabledText
	}

	system := "You are a concise, friendly community assistant. Answer in a few sentences."
	if ref := s.reference.Reference().Reference; ref != "" {
		system = fmt.Sprintf("%s\n\nCommunity context:\n%s", system, ref)
	}

	answer, err := s.completer.Complete(ctx, system, prompt)
	if err != nil {
		s.logger.Error("Completion request failed", zap.Error(err))
		return ChatUnavailableText
	}
	return answer
}
