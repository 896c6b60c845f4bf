package jsonfile

import (
	"errors"
	"os"

	"gatekeeper/internal/domain"

	"go.uber.org/zap"
)

// ReferenceStore implements repository.ReferenceRepository. The document is
// read once at construction and never written back.
type ReferenceStore struct {
	data domain.ReferenceData
}

// NewReferenceStore loads the reference document from path, falling back to
// the typed default on a missing or unreadable file.
func NewReferenceStore(path string, logger *zap.Logger) *ReferenceStore {
	data := domain.DefaultReferenceData()
	if err := readDocument(path, &data); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("Reference data file missing, using defaults", zap.String("path", path))
		} else {
			logger.Error("Failed to load reference data, using defaults",
				zap.String("path", path),
				zap.Error(err),
			)
		}
		data = domain.DefaultReferenceData()
	}
	return &ReferenceStore{data: data}
}

// Reference returns the static reference document.
func (s *ReferenceStore) Reference() domain.ReferenceData {
	return s.data
}
