package testutil

import (
	"context"

	"gatekeeper/internal/domain"

	"github.com/stretchr/testify/mock"
	tele "gopkg.in/telebot.v3"
)

// MockVerifiedRepository is a mock for repository.VerifiedRepository
type MockVerifiedRepository struct {
	mock.Mock
}

func (m *MockVerifiedRepository) IsVerified(userID int64) bool {
	args := m.Called(userID)
	return args.Bool(0)
}

func (m *MockVerifiedRepository) SetVerified(userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

// MockPointerRepository is a mock for repository.PointerRepository
type MockPointerRepository struct {
	mock.Mock
}

func (m *MockPointerRepository) Get() (int, bool) {
	args := m.Called()
	return args.Int(0), args.Bool(1)
}

func (m *MockPointerRepository) Set(messageID int) error {
	args := m.Called(messageID)
	return args.Error(0)
}

// MockReferenceRepository is a mock for repository.ReferenceRepository
type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) Reference() domain.ReferenceData {
	args := m.Called()
	return args.Get(0).(domain.ReferenceData)
}

// MockTelegramAPI is a mock for service.TelegramAPI
type MockTelegramAPI struct {
	mock.Mock
}

func (m *MockTelegramAPI) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	args := m.Called(to, what, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tele.Message), args.Error(1)
}

func (m *MockTelegramAPI) Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error) {
	args := m.Called(msg, what, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tele.Message), args.Error(1)
}

func (m *MockTelegramAPI) CreateInviteLink(chat tele.Recipient, link *tele.ChatInviteLink) (*tele.ChatInviteLink, error) {
	args := m.Called(chat, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tele.ChatInviteLink), args.Error(1)
}

// MockCompleter is a mock for service.Completer
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}
