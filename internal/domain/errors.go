package domain

import "errors"

// Workflow precondition violations. Handlers map these to denial messages;
// none of them indicates a mutated state.
var (
	// ErrAlreadyVerified is returned when a verified user tries to start over.
	ErrAlreadyVerified = errors.New("user is already verified")

	// ErrSessionExists is returned when a session or pending approval already
	// exists for the user (duplicate start guard).
	ErrSessionExists = errors.New("verification already in progress")

	// ErrNoActiveSession is returned for an answer with no open session.
	ErrNoActiveSession = errors.New("no active verification session")

	// ErrApprovalUnknown is returned for a decision on a missing pending
	// approval (expired, already decided, or never submitted).
	ErrApprovalUnknown = errors.New("approval is expired or unknown")

	// ErrForbidden is returned when a decision comes from anyone but the
	// configured admin.
	ErrForbidden = errors.New("forbidden")
)
