package testutil

import (
	"time"

	"gatekeeper/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestSession creates a test verification session
func NewTestSession(userID int64, question string) *domain.VerificationSession {
	return &domain.VerificationSession{
		UserID:    userID,
		Question:  question,
		CreatedAt: time.Now(),
	}
}

// NewTestApproval creates a test pending approval
func NewTestApproval(userID int64, question, answer string) *domain.PendingApproval {
	return &domain.PendingApproval{
		UserID:    userID,
		Question:  question,
		Answer:    answer,
		CreatedAt: time.Now(),
	}
}

// NewTestReference creates reference data with the given keywords
func NewTestReference(keywords ...string) domain.ReferenceData {
	return domain.ReferenceData{
		Keywords:  keywords,
		Reference: "test community rules",
	}
}
