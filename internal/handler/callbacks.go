package handler

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gatekeeper/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleCallback handles ALL callback queries: the token is parsed once into
// a closed Action and dispatched exhaustively by kind.
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	// Depending on how the button was built the token arrives either as the
	// unique or as the raw data.
	token := callback.Unique
	if token == "" {
		token = cleanCallbackData(callback.Data)
	}

	action := domain.ParseAction(token)
	switch action.Kind {
	case domain.ActionApprove:
		return h.handleDecision(c, action.TargetID, domain.DecisionApprove)
	case domain.ActionReject:
		return h.handleDecision(c, action.TargetID, domain.DecisionReject)
	case domain.ActionUnknown:
	}

	h.logger.Warn("Unhandled callback",
		zap.String("token", token),
		zap.Int64("user_id", c.Sender().ID),
	)
	return c.Respond()
}

// handleDecision applies an approve/reject press to the workflow and feeds
// the outcome back through the callback acknowledgement.
func (h *Handler) handleDecision(c tele.Context, targetID int64, decision domain.Decision) error {
	actorID := c.Sender().ID

	var err error
	if decision == domain.DecisionApprove {
		err = h.verification.Approve(actorID, targetID)
	} else {
		err = h.verification.Reject(actorID, targetID)
	}

	switch {
	case errors.Is(err, domain.ErrForbidden):
		h.logger.Warn("Non-admin pressed a decision button",
			zap.Int64("actor_id", actorID),
			zap.Int64("target_id", targetID),
		)
		return c.Respond(&tele.CallbackResponse{
			Text:      "🚫 Only the admin can decide.",
			ShowAlert: true,
		})
	case errors.Is(err, domain.ErrApprovalUnknown):
		return c.Respond(&tele.CallbackResponse{
			Text: "This request is expired or already handled.",
		})
	case err != nil:
		h.logger.Error("Decision failed",
			zap.Int64("target_id", targetID),
			zap.String("decision", string(decision)),
			zap.Error(err),
		)
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
	}

	// Strip the buttons off the request message so it cannot be pressed twice.
	outcome := "✅ Approved"
	if decision == domain.DecisionReject {
		outcome = "❌ Rejected"
	}
	if msg := c.Message(); msg != nil {
		if err := c.Edit(fmt.Sprintf("%s\n\n%s", msg.Text, outcome)); err != nil {
			h.logger.Warn("Failed to edit decision message", zap.Error(err))
		}
	}

	return c.Respond(&tele.CallbackResponse{Text: outcome})
}
