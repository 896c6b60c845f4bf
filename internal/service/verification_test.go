package service

import (
	"errors"
	"strings"
	"testing"

	"gatekeeper/internal/domain"
	"gatekeeper/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

const (
	testAdminID = int64(100)
	testGroupID = int64(-100999)
)

type verificationFixture struct {
	api       *testutil.MockTelegramAPI
	verified  *testutil.MockVerifiedRepository
	reference *testutil.MockReferenceRepository
	registry  *Registry
	svc       *Verification
}

func newVerificationFixture(groupID int64, keywords ...string) *verificationFixture {
	f := &verificationFixture{
		api:       new(testutil.MockTelegramAPI),
		verified:  new(testutil.MockVerifiedRepository),
		reference: new(testutil.MockReferenceRepository),
	}
	f.reference.On("Reference").Return(testutil.NewTestReference(keywords...)).Maybe()
	f.registry = NewRegistry(f.verified, testutil.NewTestLogger())
	f.svc = NewVerification(f.api, f.registry, f.verified, f.reference, VerificationConfig{
		AdminID:         testAdminID,
		GroupID:         groupID,
		GroupInviteLink: "https://t.me/+fallback",
	}, testutil.NewTestLogger())
	return f
}

// seedPending walks userID through start+submit without the admin notification.
func (f *verificationFixture) seedPending(t *testing.T, userID int64) {
	t.Helper()
	f.verified.On("IsVerified", userID).Return(false)
	require.NoError(t, f.registry.StartSession(userID, "why?"))
	_, err := f.registry.SubmitAnswer(userID, "because community trust")
	require.NoError(t, err)
}

func toChat(id int64) interface{} {
	return mock.MatchedBy(func(to tele.Recipient) bool {
		return to == tele.ChatID(id)
	})
}

func textContaining(sub string) interface{} {
	return mock.MatchedBy(func(what interface{}) bool {
		s, ok := what.(string)
		return ok && strings.Contains(s, sub)
	})
}

func TestVerification_Begin(t *testing.T) {
	f := newVerificationFixture(0)
	f.verified.On("IsVerified", int64(42)).Return(false)

	question, err := f.svc.Begin(42)

	require.NoError(t, err)
	assert.NotEmpty(t, question)
	assert.True(t, f.registry.HasSession(42))
}

func TestVerification_Begin_AlreadyVerified(t *testing.T) {
	f := newVerificationFixture(0)
	f.verified.On("IsVerified", int64(42)).Return(true)

	_, err := f.svc.Begin(42)

	assert.ErrorIs(t, err, domain.ErrAlreadyVerified)
	assert.False(t, f.registry.HasSession(42))
}

func TestVerification_Begin_DuplicateStart(t *testing.T) {
	f := newVerificationFixture(0)
	f.verified.On("IsVerified", int64(7)).Return(false)

	_, err := f.svc.Begin(7)
	require.NoError(t, err)

	_, err = f.svc.Begin(7)
	assert.ErrorIs(t, err, domain.ErrSessionExists)
}

func TestVerification_QuestionUsesKeyword(t *testing.T) {
	f := newVerificationFixture(0, "trust")
	f.verified.On("IsVerified", int64(42)).Return(false)

	question, err := f.svc.Begin(42)

	require.NoError(t, err)
	assert.Contains(t, question, `"trust"`)
}

func TestVerification_Submit_NoSession(t *testing.T) {
	f := newVerificationFixture(0)

	err := f.svc.Submit(42, "answer")

	assert.ErrorIs(t, err, domain.ErrNoActiveSession)
	f.api.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerification_Submit_NotifiesAdmin(t *testing.T) {
	f := newVerificationFixture(0)
	f.verified.On("IsVerified", int64(42)).Return(false)
	require.NoError(t, f.registry.StartSession(42, "why?"))
	f.api.On("Send", toChat(testAdminID), textContaining("because community trust"), mock.Anything).
		Return(&tele.Message{ID: 1}, nil)

	err := f.svc.Submit(42, "because community trust")

	require.NoError(t, err)
	f.api.AssertExpectations(t)

	// Entry moved to pending.
	assert.False(t, f.registry.HasSession(42))
	_, err = f.registry.Resolve(42)
	assert.NoError(t, err)
}

func TestVerification_Submit_EscapesMarkdownInUserText(t *testing.T) {
	f := newVerificationFixture(0)
	f.verified.On("IsVerified", int64(42)).Return(false)
	require.NoError(t, f.registry.StartSession(42, "what does *trust* mean?"))

	// An unbalanced _ or * in the raw answer would make Telegram reject the
	// whole decision request, orphaning the pending approval.
	f.api.On("Send", toChat(testAdminID), mock.MatchedBy(func(what interface{}) bool {
		s, ok := what.(string)
		return ok &&
			strings.Contains(s, `i\_like\*snakes`) &&
			strings.Contains(s, `what does \*trust\* mean?`) &&
			!strings.Contains(s, "i_like*snakes")
	}), mock.Anything).Return(&tele.Message{ID: 1}, nil)

	err := f.svc.Submit(42, "i_like*snakes")

	require.NoError(t, err)
	f.api.AssertExpectations(t)
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text untouched",
			input:    "because community trust",
			expected: "because community trust",
		},
		{
			name:     "underscore",
			input:    "my_username",
			expected: `my\_username`,
		},
		{
			name:     "asterisk and backtick",
			input:    "*bold* and `code`",
			expected: "\\*bold\\* and \\`code\\`",
		},
		{
			name:     "link bracket",
			input:    "[link](https://example.com)",
			expected: `\[link](https://example.com)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, escapeMarkdown(tt.input))
		})
	}
}

func TestVerification_Submit_AdminNotifyFailureKeepsPending(t *testing.T) {
	f := newVerificationFixture(0)
	f.verified.On("IsVerified", int64(42)).Return(false)
	require.NoError(t, f.registry.StartSession(42, "why?"))
	f.api.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("bot was blocked"))

	err := f.svc.Submit(42, "answer")

	// The move is final; the entry waits for the admin regardless.
	require.NoError(t, err)
	_, err = f.registry.Resolve(42)
	assert.NoError(t, err)
}

func TestVerification_Approve_Forbidden(t *testing.T) {
	f := newVerificationFixture(0)
	f.seedPending(t, 42)

	err := f.svc.Approve(999, 42)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	f.verified.AssertNotCalled(t, "SetVerified", mock.Anything)

	// Pending entry untouched.
	_, err = f.registry.Resolve(42)
	assert.NoError(t, err)
}

func TestVerification_Approve_Unknown(t *testing.T) {
	f := newVerificationFixture(0)

	err := f.svc.Approve(testAdminID, 42)

	assert.ErrorIs(t, err, domain.ErrApprovalUnknown)
	f.verified.AssertNotCalled(t, "SetVerified", mock.Anything)
}

func TestVerification_Approve_PersistsAndNotifies(t *testing.T) {
	f := newVerificationFixture(0)
	f.seedPending(t, 42)
	f.verified.On("SetVerified", int64(42)).Return(nil)
	f.api.On("Send", toChat(42), textContaining("verified"), mock.Anything).
		Return(&tele.Message{ID: 2}, nil)

	err := f.svc.Approve(testAdminID, 42)

	require.NoError(t, err)
	f.verified.AssertExpectations(t)
	f.api.AssertExpectations(t)

	// Decision is final: the second press finds nothing.
	err = f.svc.Approve(testAdminID, 42)
	assert.ErrorIs(t, err, domain.ErrApprovalUnknown)
}

func TestVerification_Approve_NotifyFailureDoesNotUnmark(t *testing.T) {
	f := newVerificationFixture(0)
	f.seedPending(t, 42)
	f.verified.On("SetVerified", int64(42)).Return(nil)
	f.api.On("Send", toChat(42), mock.Anything, mock.Anything).
		Return(nil, errors.New("user blocked the bot"))
	f.api.On("Send", toChat(testAdminID), textContaining("could not be notified"), mock.Anything).
		Return(&tele.Message{ID: 3}, nil)

	err := f.svc.Approve(testAdminID, 42)

	require.NoError(t, err)
	f.verified.AssertCalled(t, "SetVerified", int64(42))
	f.api.AssertExpectations(t)
}

func TestVerification_Approve_DeliversFreshInvite(t *testing.T) {
	f := newVerificationFixture(testGroupID)
	f.seedPending(t, 42)
	f.verified.On("SetVerified", int64(42)).Return(nil)
	f.api.On("Send", toChat(42), textContaining("verified"), mock.Anything).
		Return(&tele.Message{ID: 2}, nil)
	f.api.On("CreateInviteLink", toChat(testGroupID), mock.Anything).
		Return(&tele.ChatInviteLink{InviteLink: "https://t.me/+fresh"}, nil)
	f.api.On("Send", toChat(42), textContaining("https://t.me/+fresh"), mock.Anything).
		Return(&tele.Message{ID: 3}, nil)

	err := f.svc.Approve(testAdminID, 42)

	require.NoError(t, err)
	f.api.AssertExpectations(t)
}

func TestVerification_Approve_FallbackInviteOnLinkFailure(t *testing.T) {
	f := newVerificationFixture(testGroupID)
	f.seedPending(t, 42)
	f.verified.On("SetVerified", int64(42)).Return(nil)
	f.api.On("Send", toChat(42), textContaining("verified"), mock.Anything).
		Return(&tele.Message{ID: 2}, nil)
	f.api.On("CreateInviteLink", toChat(testGroupID), mock.Anything).
		Return(nil, errors.New("not enough rights"))
	f.api.On("Send", toChat(testAdminID), textContaining("fallback"), mock.Anything).
		Return(&tele.Message{ID: 3}, nil)
	f.api.On("Send", toChat(42), textContaining("https://t.me/+fallback"), mock.Anything).
		Return(&tele.Message{ID: 4}, nil)

	err := f.svc.Approve(testAdminID, 42)

	require.NoError(t, err)
	f.api.AssertExpectations(t)
}

func TestVerification_Reject(t *testing.T) {
	f := newVerificationFixture(0)
	f.seedPending(t, 42)
	f.api.On("Send", toChat(42), textContaining("not approved"), mock.Anything).
		Return(&tele.Message{ID: 2}, nil)

	err := f.svc.Reject(testAdminID, 42)

	require.NoError(t, err)
	f.verified.AssertNotCalled(t, "SetVerified", mock.Anything)
	f.api.AssertExpectations(t)

	// Double-click: the second press yields the denial and no second message.
	err = f.svc.Reject(testAdminID, 42)
	assert.ErrorIs(t, err, domain.ErrApprovalUnknown)
	f.api.AssertNumberOfCalls(t, "Send", 1)
}

func TestVerification_Reject_Forbidden(t *testing.T) {
	f := newVerificationFixture(0)
	f.seedPending(t, 42)

	err := f.svc.Reject(999, 42)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, resolveErr := f.registry.Resolve(42)
	assert.NoError(t, resolveErr)
}

// Full walk of scenario: start, answer, admin approval, invite delivery.
func TestVerification_EndToEnd_ApproveFlow(t *testing.T) {
	f := newVerificationFixture(testGroupID)
	f.verified.On("IsVerified", int64(42)).Return(false)
	f.api.On("Send", toChat(testAdminID), textContaining("because community trust"), mock.Anything).
		Return(&tele.Message{ID: 1}, nil)
	f.api.On("Send", toChat(42), mock.Anything, mock.Anything).
		Return(&tele.Message{ID: 2}, nil)
	f.api.On("CreateInviteLink", toChat(testGroupID), mock.Anything).
		Return(&tele.ChatInviteLink{InviteLink: "https://t.me/+fresh"}, nil)
	f.verified.On("SetVerified", int64(42)).Return(nil)

	question, err := f.svc.Begin(42)
	require.NoError(t, err)
	assert.NotEmpty(t, question)

	require.NoError(t, f.svc.Submit(42, "because community trust"))
	require.NoError(t, f.svc.Approve(testAdminID, 42))

	f.verified.AssertCalled(t, "SetVerified", int64(42))
	f.api.AssertCalled(t, "CreateInviteLink", toChat(testGroupID), mock.Anything)
}
