package repository

import "gatekeeper/internal/domain"

// VerifiedRepository tracks which users passed verification. Mutations are
// persisted synchronously; a failed write is logged by the implementation and
// the in-memory state stays authoritative.
type VerifiedRepository interface {
	IsVerified(userID int64) bool
	SetVerified(userID int64) error
}

// PointerRepository stores the identifier of the last verification prompt
// posted to the public channel.
type PointerRepository interface {
	// Get returns the recorded message ID, or ok=false if none is recorded.
	Get() (messageID int, ok bool)
	Set(messageID int) error
}

// ReferenceRepository exposes the static reference document.
type ReferenceRepository interface {
	Reference() domain.ReferenceData
}
