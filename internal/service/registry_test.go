package service

import (
	"sync"
	"testing"
	"time"

	"gatekeeper/internal/domain"
	"gatekeeper/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(verified *testutil.MockVerifiedRepository) *Registry {
	return NewRegistry(verified, testutil.NewTestLogger())
}

func TestRegistry_StartSession(t *testing.T) {
	tests := []struct {
		name        string
		userID      int64
		verified    bool
		prepare     func(r *Registry)
		expectedErr error
	}{
		{
			name:   "fresh user starts a session",
			userID: 42,
		},
		{
			name:        "verified user cannot start",
			userID:      42,
			verified:    true,
			expectedErr: domain.ErrAlreadyVerified,
		},
		{
			name:   "existing session blocks a second start",
			userID: 7,
			prepare: func(r *Registry) {
				require.NoError(t, r.StartSession(7, "q"))
			},
			expectedErr: domain.ErrSessionExists,
		},
		{
			name:   "pending approval blocks a start",
			userID: 7,
			prepare: func(r *Registry) {
				require.NoError(t, r.StartSession(7, "q"))
				_, err := r.SubmitAnswer(7, "a")
				require.NoError(t, err)
			},
			expectedErr: domain.ErrSessionExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verified := new(testutil.MockVerifiedRepository)
			verified.On("IsVerified", tt.userID).Return(tt.verified)
			registry := newTestRegistry(verified)

			if tt.prepare != nil {
				tt.prepare(registry)
			}

			err := registry.StartSession(tt.userID, "why?")

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
				assert.True(t, registry.HasSession(tt.userID))
			}
		})
	}
}

func TestRegistry_SubmitAnswer_NoSession(t *testing.T) {
	registry := newTestRegistry(new(testutil.MockVerifiedRepository))

	approval, err := registry.SubmitAnswer(42, "answer")

	assert.ErrorIs(t, err, domain.ErrNoActiveSession)
	assert.Nil(t, approval)
}

func TestRegistry_SubmitAnswer_MovesSessionToPending(t *testing.T) {
	verified := new(testutil.MockVerifiedRepository)
	verified.On("IsVerified", int64(42)).Return(false)
	registry := newTestRegistry(verified)

	require.NoError(t, registry.StartSession(42, "why?"))

	approval, err := registry.SubmitAnswer(42, "because community trust")

	require.NoError(t, err)
	assert.Equal(t, int64(42), approval.UserID)
	assert.Equal(t, "why?", approval.Question)
	assert.Equal(t, "because community trust", approval.Answer)

	// Session is gone, the user exists only on the pending side.
	assert.False(t, registry.HasSession(42))
	_, err = registry.SubmitAnswer(42, "again")
	assert.ErrorIs(t, err, domain.ErrNoActiveSession)
}

func TestRegistry_Resolve(t *testing.T) {
	verified := new(testutil.MockVerifiedRepository)
	verified.On("IsVerified", int64(42)).Return(false)
	registry := newTestRegistry(verified)

	require.NoError(t, registry.StartSession(42, "why?"))
	_, err := registry.SubmitAnswer(42, "answer")
	require.NoError(t, err)

	approval, err := registry.Resolve(42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), approval.UserID)

	// A second resolve (double-click) finds nothing.
	_, err = registry.Resolve(42)
	assert.ErrorIs(t, err, domain.ErrApprovalUnknown)
}

func TestRegistry_Resolve_Unknown(t *testing.T) {
	registry := newTestRegistry(new(testutil.MockVerifiedRepository))

	_, err := registry.Resolve(42)

	assert.ErrorIs(t, err, domain.ErrApprovalUnknown)
}

func TestRegistry_ConcurrentDuplicateStarts(t *testing.T) {
	verified := new(testutil.MockVerifiedRepository)
	verified.On("IsVerified", int64(7)).Return(false)
	registry := newTestRegistry(verified)

	const attempts = 32
	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- registry.StartSession(7, "why?")
		}()
	}
	wg.Wait()
	close(errs)

	var successes, duplicates int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		default:
			assert.ErrorIs(t, err, domain.ErrSessionExists)
			duplicates++
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, duplicates)
	assert.True(t, registry.HasSession(7))
}

func TestRegistry_ExpireStale(t *testing.T) {
	verified := new(testutil.MockVerifiedRepository)
	verified.On("IsVerified", int64(1)).Return(false)
	registry := newTestRegistry(verified)

	require.NoError(t, registry.StartSession(1, "q1"))

	// Zero ttl disables expiry.
	assert.Empty(t, registry.ExpireStale(0))
	assert.True(t, registry.HasSession(1))

	// Nothing is old enough yet.
	assert.Empty(t, registry.ExpireStale(time.Hour))

	// Plant entries that predate the cutoff.
	staleSession := testutil.NewTestSession(2, "q2")
	staleSession.CreatedAt = time.Now().Add(-2 * time.Hour)
	staleApproval := testutil.NewTestApproval(3, "q3", "a3")
	staleApproval.CreatedAt = time.Now().Add(-2 * time.Hour)
	registry.mu.Lock()
	registry.sessions[2] = staleSession
	registry.pending[3] = staleApproval
	registry.mu.Unlock()

	expired := registry.ExpireStale(time.Hour)

	assert.ElementsMatch(t, []int64{2, 3}, expired)
	assert.True(t, registry.HasSession(1))
	assert.False(t, registry.HasSession(2))
	_, err := registry.Resolve(3)
	assert.ErrorIs(t, err, domain.ErrApprovalUnknown)
}
