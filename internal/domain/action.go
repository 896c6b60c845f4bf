package domain

import (
	"strconv"
	"strings"
)

// ActionKind enumerates every callback action the bot understands.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionApprove
	ActionReject
)

// Action is the parsed form of a callback token ("approve_42", "reject_42").
// Parsing happens in exactly one place so dispatch can match exhaustively on
// Kind instead of scattering string prefix checks.
type Action struct {
	Kind     ActionKind
	TargetID int64
}

// Callback data prefixes for admin decision buttons.
const (
	CallbackApprovePrefix = "approve_"
	CallbackRejectPrefix  = "reject_"
)

// ApproveToken builds the callback token for an approve button.
func ApproveToken(userID int64) string {
	return CallbackApprovePrefix + strconv.FormatInt(userID, 10)
}

// RejectToken builds the callback token for a reject button.
func RejectToken(userID int64) string {
	return CallbackRejectPrefix + strconv.FormatInt(userID, 10)
}

// ParseAction decodes a callback token into an Action. Anything malformed
// comes back as ActionUnknown with a zero target.
func ParseAction(data string) Action {
	switch {
	case strings.HasPrefix(data, CallbackApprovePrefix):
		return parseTarget(ActionApprove, strings.TrimPrefix(data, CallbackApprovePrefix))
	case strings.HasPrefix(data, CallbackRejectPrefix):
		return parseTarget(ActionReject, strings.TrimPrefix(data, CallbackRejectPrefix))
	}
	return Action{Kind: ActionUnknown}
}

func parseTarget(kind ActionKind, raw string) Action {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return Action{Kind: ActionUnknown}
	}
	return Action{Kind: kind, TargetID: id}
}
