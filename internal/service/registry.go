package service

import (
	"sync"
	"time"

	"gatekeeper/internal/domain"
	"gatekeeper/internal/repository"

	"go.uber.org/zap"
)

// Registry tracks users mid-verification. Both maps live behind one mutex so
// every check-then-write (start guard, answer move, resolve delete) is a
// single critical section: telebot runs each update in its own goroutine, so
// two rapid events for the same user really do race.
//
// Sessions and pending approvals are deliberately not persisted; a restart
// drops in-flight verifications.
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*domain.VerificationSession
	pending  map[int64]*domain.PendingApproval

	verified repository.VerifiedRepository
	logger   *zap.Logger
}

// NewRegistry creates an empty session registry.
func NewRegistry(verified repository.VerifiedRepository, logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[int64]*domain.VerificationSession),
		pending:  make(map[int64]*domain.PendingApproval),
		verified: verified,
		logger:   logger,
	}
}

// StartSession opens a verification session for userID. It refuses verified
// users and users that already have a session or a pending approval, so a
// user identifier is never tracked twice.
func (r *Registry) StartSession(userID int64, question string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.verified.IsVerified(userID) {
		return domain.ErrAlreadyVerified
	}
	if _, ok := r.sessions[userID]; ok {
		return domain.ErrSessionExists
	}
	if _, ok := r.pending[userID]; ok {
		return domain.ErrSessionExists
	}

	r.sessions[userID] = &domain.VerificationSession{
		UserID:    userID,
		Question:  question,
		CreatedAt: time.Now(),
	}
	return nil
}

// SubmitAnswer moves userID's session into the pending-approval map,
// attaching the answer. The move is atomic: after it the user exists in
// exactly one of the two maps.
func (r *Registry) SubmitAnswer(userID int64, answer string) (*domain.PendingApproval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[userID]
	if !ok {
		return nil, domain.ErrNoActiveSession
	}

	approval := &domain.PendingApproval{
		UserID:    userID,
		Question:  session.Question,
		Answer:    answer,
		CreatedAt: time.Now(),
	}
	delete(r.sessions, userID)
	r.pending[userID] = approval
	return approval, nil
}

// Resolve removes and returns userID's pending approval. The removal happens
// before any downstream notification, so a decision is final once taken and a
// double-click on the same button finds nothing the second time.
func (r *Registry) Resolve(userID int64) (*domain.PendingApproval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	approval, ok := r.pending[userID]
	if !ok {
		return nil, domain.ErrApprovalUnknown
	}
	delete(r.pending, userID)
	return approval, nil
}

// HasSession reports whether userID has an open session awaiting an answer.
func (r *Registry) HasSession(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[userID]
	return ok
}

// ExpireStale drops sessions and pending approvals older than ttl and returns
// the affected user IDs. A ttl of zero disables expiry.
func (r *Registry) ExpireStale(ttl time.Duration) []int64 {
	if ttl <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	var expired []int64
	for userID, session := range r.sessions {
		if session.CreatedAt.Before(cutoff) {
			delete(r.sessions, userID)
			expired = append(expired, userID)
		}
	}
	for userID, approval := range r.pending {
		if approval.CreatedAt.Before(cutoff) {
			delete(r.pending, userID)
			expired = append(expired, userID)
		}
	}

	if len(expired) > 0 {
		r.logger.Info("Expired stale verification entries",
			zap.Int64s("user_ids", expired),
			zap.Duration("ttl", ttl),
		)
	}
	return expired
}
