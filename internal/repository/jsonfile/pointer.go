package jsonfile

import (
	"errors"
	"os"
	"sync"

	"go.uber.org/zap"
)

type pointerDocument struct {
	MessageID *int `json:"messageId"`
}

// PointerStore implements repository.PointerRepository over a JSON document
// of the form {"messageId": <int|null>}.
type PointerStore struct {
	path   string
	logger *zap.Logger

	mu        sync.RWMutex
	messageID *int
}

// NewPointerStore loads the last-broadcast pointer from path, falling back to
// "no message recorded" on a missing or unreadable file.
func NewPointerStore(path string, logger *zap.Logger) *PointerStore {
	var doc pointerDocument
	if err := readDocument(path, &doc); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("Broadcast pointer file missing, starting unset", zap.String("path", path))
		} else {
			logger.Error("Failed to load broadcast pointer, starting unset",
				zap.String("path", path),
				zap.Error(err),
			)
		}
		doc.MessageID = nil
	}
	return &PointerStore{
		path:      path,
		logger:    logger,
		messageID: doc.MessageID,
	}
}

// Get returns the recorded message ID, or ok=false if none is recorded.
func (s *PointerStore) Get() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.messageID == nil {
		return 0, false
	}
	return *s.messageID, true
}

// Set records messageID and persists the pointer.
func (s *PointerStore) Set(messageID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messageID = &messageID
	if err := writeDocument(s.path, pointerDocument{MessageID: s.messageID}); err != nil {
		s.logger.Error("Failed to persist broadcast pointer",
			zap.String("path", s.path),
			zap.Int("message_id", messageID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
