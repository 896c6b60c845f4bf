package jsonfile

import (
	"errors"
	"os"
	"sync"

	"go.uber.org/zap"
)

// VerifiedStore implements repository.VerifiedRepository over a single JSON
// document of the form {"<userId>": true, ...}.
type VerifiedStore struct {
	path   string
	logger *zap.Logger

	mu    sync.RWMutex
	users map[int64]bool
}

// NewVerifiedStore loads the verified-user set from path, falling back to an
// empty set on a missing or unreadable file.
func NewVerifiedStore(path string, logger *zap.Logger) *VerifiedStore {
	users := make(map[int64]bool)
	if err := readDocument(path, &users); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("Verified users file missing, starting empty", zap.String("path", path))
		} else {
			logger.Error("Failed to load verified users, starting empty",
				zap.String("path", path),
				zap.Error(err),
			)
		}
		users = make(map[int64]bool)
	}
	return &VerifiedStore{
		path:   path,
		logger: logger,
		users:  users,
	}
}

// IsVerified reports whether userID passed verification.
func (s *VerifiedStore) IsVerified(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[userID]
}

// SetVerified marks userID as verified and persists the set. The in-memory
// set is updated even when the write fails; the failure is logged and the
// change is simply lost on the next restart.
func (s *VerifiedStore) SetVerified(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[userID] = true
	if err := writeDocument(s.path, s.users); err != nil {
		s.logger.Error("Failed to persist verified users",
			zap.String("path", s.path),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Count returns the number of verified users.
func (s *VerifiedStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
