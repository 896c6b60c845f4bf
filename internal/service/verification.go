package service

import (
	"fmt"
	"math/rand"
	"strings"

	"gatekeeper/internal/domain"
	"gatekeeper/internal/repository"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Telegram rejects the whole message when Markdown entities don't balance, so
// user-controlled text must be neutralized before it rides along bold labels.
var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// escapeMarkdown escapes Telegram Markdown metacharacters in s.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// TelegramAPI is the slice of *tele.Bot the services need. Narrow on purpose
// so tests can stub the transport.
type TelegramAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
	CreateInviteLink(chat tele.Recipient, link *tele.ChatInviteLink) (*tele.ChatInviteLink, error)
}

const fallbackQuestion = "To verify you are a real person, answer in one message: why do you want to join this community?"

// VerificationConfig carries the identities the workflow acts on.
type VerificationConfig struct {
	AdminID         int64
	GroupID         int64 // 0 disables the auto-invite step
	GroupInviteLink string
}

// Verification drives a user from "unverified" through question, answer and
// admin decision. All Telegram sends here are best-effort: a delivery failure
// is logged and reported, never rolled back into the state machine.
type Verification struct {
	api       TelegramAPI
	registry  *Registry
	verified  repository.VerifiedRepository
	reference repository.ReferenceRepository
	cfg       VerificationConfig
	logger    *zap.Logger
}

// NewVerification creates the approval workflow service.
func NewVerification(
	api TelegramAPI,
	registry *Registry,
	verified repository.VerifiedRepository,
	reference repository.ReferenceRepository,
	cfg VerificationConfig,
	logger *zap.Logger,
) *Verification {
	return &Verification{
		api:       api,
		registry:  registry,
		verified:  verified,
		reference: reference,
		cfg:       cfg,
		logger:    logger,
	}
}

// Begin opens a session for userID and returns the challenge question.
// Fails with ErrAlreadyVerified or ErrSessionExists without side effects.
func (s *Verification) Begin(userID int64) (string, error) {
	question := s.pickQuestion()
	if err := s.registry.StartSession(userID, question); err != nil {
		return "", err
	}

	s.logger.Info("Verification session started", zap.Int64("user_id", userID))
	return question, nil
}

// Submit records userID's answer and forwards the question/answer pair to the
// admin with approve/reject buttons. The session-to-pending move is final even
// when the admin notification cannot be delivered; the entry simply waits.
func (s *Verification) Submit(userID int64, answer string) error {
	approval, err := s.registry.SubmitAnswer(userID, answer)
	if err != nil {
		return err
	}

	s.logger.Info("Answer submitted", zap.Int64("user_id", userID))

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data("✅ Approve", domain.ApproveToken(userID)),
		markup.Data("❌ Reject", domain.RejectToken(userID)),
	))

	text := fmt.Sprintf(
		"Verification request from user `%d`\n\n*Question:* %s\n*Answer:* %s",
		userID, escapeMarkdown(approval.Question), escapeMarkdown(approval.Answer),
	)
	if _, err := s.api.Send(tele.ChatID(s.cfg.AdminID), text, markup, tele.ModeMarkdown); err != nil {
		s.logger.Error("Failed to notify admin about submitted answer",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
	return nil
}

// Approve marks targetID as verified. Only the configured admin may call it.
// The verified set is persisted before any notification or invite delivery,
// so a downstream failure never leaves the user unmarked.
func (s *Verification) Approve(actorID, targetID int64) error {
	if actorID != s.cfg.AdminID {
		return domain.ErrForbidden
	}
	if _, err := s.registry.Resolve(targetID); err != nil {
		return err
	}

	// Persist first. A write failure is logged by the store; the in-memory
	// set stays authoritative for the rest of the process lifetime.
	if err := s.verified.SetVerified(targetID); err != nil {
		s.logger.Warn("Verified set not persisted, change lost on restart",
			zap.Int64("user_id", targetID),
			zap.Error(err),
		)
	}

	s.logger.Info("User approved",
		zap.Int64("user_id", targetID),
		zap.Int64("admin_id", actorID),
	)

	if _, err := s.api.Send(tele.ChatID(targetID), "🎉 You have been verified!"); err != nil {
		s.logger.Error("Failed to deliver approval notice",
			zap.Int64("user_id", targetID),
			zap.Error(err),
		)
		s.warnAdmin(fmt.Sprintf("User %d is approved but could not be notified: %v", targetID, err))
		return nil
	}

	s.deliverInvite(targetID)
	return nil
}

// Reject removes targetID's pending approval without recording anything, so
// the user may start verification again. Only the configured admin may call it.
func (s *Verification) Reject(actorID, targetID int64) error {
	if actorID != s.cfg.AdminID {
		return domain.ErrForbidden
	}
	if _, err := s.registry.Resolve(targetID); err != nil {
		return err
	}

	s.logger.Info("User rejected",
		zap.Int64("user_id", targetID),
		zap.Int64("admin_id", actorID),
	)

	text := "Your verification was not approved. You can send /start to try again."
	if _, err := s.api.Send(tele.ChatID(targetID), text); err != nil {
		s.logger.Error("Failed to deliver rejection notice",
			zap.Int64("user_id", targetID),
			zap.Error(err),
		)
	}
	return nil
}

// deliverInvite sends the approved user a way into the private group. A fresh
// single-use link is preferred; the static configured link is the fallback.
// Failures are reported to both sides and never affect verification status.
func (s *Verification) deliverInvite(userID int64) {
	if s.cfg.GroupID == 0 {
		return
	}

	link := s.cfg.GroupInviteLink
	fresh, err := s.api.CreateInviteLink(tele.ChatID(s.cfg.GroupID), &tele.ChatInviteLink{MemberLimit: 1})
	if err != nil {
		s.logger.Warn("Failed to create invite link, using fallback",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		s.warnAdmin(fmt.Sprintf("Could not create an invite link for user %d, sent the fallback link: %v", userID, err))
	} else {
		link = fresh.InviteLink
	}

	text := fmt.Sprintf("Join the group here: %s", link)
	if _, err := s.api.Send(tele.ChatID(userID), text); err != nil {
		s.logger.Error("Failed to deliver invite link",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		s.warnAdmin(fmt.Sprintf("User %d is approved but the invite link could not be delivered: %v", userID, err))
	}
}

func (s *Verification) warnAdmin(text string) {
	if _, err := s.api.Send(tele.ChatID(s.cfg.AdminID), "⚠️ "+text); err != nil {
		s.logger.Error("Failed to warn admin", zap.Error(err))
	}
}

// pickQuestion builds the challenge question around a random keyword from the
// reference data, or falls back to the generic question.
func (s *Verification) pickQuestion() string {
	keywords := s.reference.Reference().Keywords
	if len(keywords) == 0 {
		return fallbackQuestion
	}
	kw := keywords[rand.Intn(len(keywords))]
	return fmt.Sprintf(
		"To verify you are a real person, answer in one message: why do you want to join, and what does %q mean to you?",
		kw,
	)
}
