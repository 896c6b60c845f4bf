package domain

import "time"

// VerificationSession is the transient per-user record created when a user
// starts verification. It holds the challenge question until the user answers.
type VerificationSession struct {
	UserID    int64
	Question  string
	CreatedAt time.Time
}

// PendingApproval holds a submitted answer while it waits for the admin's
// decision. At most one of VerificationSession/PendingApproval exists per user.
type PendingApproval struct {
	UserID    int64
	Question  string
	Answer    string
	CreatedAt time.Time
}

// Decision is the admin's verdict on a pending approval.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)
