package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://ripple.test"

// captureGateway records delivered verification links instead of sending
// anything.
type captureGateway struct {
	mu         sync.Mutex
	recipients []string
	urls       []string
	fail       error
}

func (g *captureGateway) DeliverVerificationLink(_ context.Context, recipient, url string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recipients = append(g.recipients, recipient)
	g.urls = append(g.urls, url)
	return g.fail
}

func (g *captureGateway) lastToken(t *testing.T) string {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	require.NotEmpty(t, g.urls, "no verification link was delivered")
	url := g.urls[len(g.urls)-1]
	tok := strings.TrimPrefix(url, testBaseURL+"/auth/verify/")
	require.NotEqual(t, url, tok, "unexpected link format: %s", url)
	return tok
}

func (g *captureGateway) sent() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.urls)
}

func newTestService(opts ...Option) (*Service, *MemoryStorage, *captureGateway) {
	storage := NewMemoryStorage()
	gateway := &captureGateway{}
	svc := NewService(storage, gateway, testBaseURL, opts...)
	return svc, storage, gateway
}

// registerVerified walks a user through register and verify, returning the
// verified user.
func registerVerified(t *testing.T, svc *Service, gateway *captureGateway, email string) *User {
	t.Helper()
	ctx := context.Background()

	_, err := svc.Register(ctx, email)
	require.NoError(t, err)

	user, err := svc.VerifyAndLogin(ctx, gateway.lastToken(t))
	require.NoError(t, err)
	require.True(t, user.EmailVerified)
	return user
}

func TestService_Register(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("creates pending user and delivers link", func(t *testing.T) {
		t.Parallel()

		svc, storage, gateway := newTestService()

		user, err := svc.Register(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.False(t, user.EmailVerified)
		assert.Equal(t, StatePendingVerification, user.State())
		assert.Equal(t, 1, gateway.sent())
		assert.Equal(t, "alice@example.com", gateway.recipients[0])

		stored, err := storage.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, stored.VerificationToken)
		assert.True(t, stored.HasLiveToken(time.Now()))
	})

	t.Run("normalizes email before storing", func(t *testing.T) {
		t.Parallel()

		svc, storage, _ := newTestService()

		user, err := svc.Register(ctx, "  Bob.Smith@EXAMPLE.COM ")
		require.NoError(t, err)
		assert.Equal(t, "bob.smith@example.com", user.Email)

		_, err = storage.GetUserByEmail(ctx, "bob.smith@example.com")
		require.NoError(t, err)
	})

	t.Run("repeat registration reuses pending record", func(t *testing.T) {
		t.Parallel()

		svc, storage, gateway := newTestService()

		first, err := svc.Register(ctx, "carol@example.com")
		require.NoError(t, err)
		firstToken := gateway.lastToken(t)

		second, err := svc.Register(ctx, "carol@example.com")
		require.NoError(t, err)
		secondToken := gateway.lastToken(t)

		assert.Equal(t, first.ID, second.ID, "repeat registration must not create a second account")
		assert.NotEqual(t, firstToken, secondToken)

		// Only the latest token works.
		_, err = svc.VerifyAndLogin(ctx, firstToken)
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

		user, err := svc.VerifyAndLogin(ctx, secondToken)
		require.NoError(t, err)
		assert.True(t, user.EmailVerified)

		stored, err := storage.GetUserByEmail(ctx, "carol@example.com")
		require.NoError(t, err)
		assert.Nil(t, stored.VerificationToken)
	})

	t.Run("verified email is rejected without issuing a token", func(t *testing.T) {
		t.Parallel()

		svc, storage, gateway := newTestService()
		registerVerified(t, svc, gateway, "dave@example.com")
		sentBefore := gateway.sent()

		_, err := svc.Register(ctx, "dave@example.com")
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
		assert.Equal(t, sentBefore, gateway.sent(), "rejected registration must not send email")

		stored, err := storage.GetUserByEmail(ctx, "dave@example.com")
		require.NoError(t, err)
		assert.Nil(t, stored.VerificationToken, "rejected registration must not issue a token")
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		t.Parallel()

		svc, _, gateway := newTestService()

		for _, email := range []string{"", "not-an-email", "a@b", "a@@example.com"} {
			_, err := svc.Register(ctx, email)
			assert.ErrorIs(t, err, ErrInvalidEmail, "email %q", email)
		}
		assert.Zero(t, gateway.sent())
	})

	t.Run("gateway failure does not fail registration", func(t *testing.T) {
		t.Parallel()

		storage := NewMemoryStorage()
		gateway := &captureGateway{fail: assert.AnError}
		svc := NewService(storage, gateway, testBaseURL)

		user, err := svc.Register(ctx, "eve@example.com")
		require.NoError(t, err)

		// The token is persisted even though delivery failed, so a
		// re-registration or support path can still succeed.
		stored, err := storage.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, stored.HasLiveToken(time.Now()))
	})
}

func TestService_RequestLoginLink(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("delivers a fresh link to a verified user", func(t *testing.T) {
		t.Parallel()

		svc, _, gateway := newTestService()
		registerVerified(t, svc, gateway, "alice@example.com")

		user, err := svc.RequestLoginLink(ctx, "alice@example.com")
		require.NoError(t, err)

		got, err := svc.VerifyAndLogin(ctx, gateway.lastToken(t))
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("unknown and unverified emails fail identically", func(t *testing.T) {
		t.Parallel()

		svc, _, gateway := newTestService()

		_, err := svc.Register(ctx, "pending@example.com")
		require.NoError(t, err)
		sentBefore := gateway.sent()

		_, unknownErr := svc.RequestLoginLink(ctx, "nobody@example.com")
		_, unverifiedErr := svc.RequestLoginLink(ctx, "pending@example.com")

		assert.ErrorIs(t, unknownErr, ErrNotEligible)
		assert.ErrorIs(t, unverifiedErr, ErrNotEligible)
		assert.Equal(t, unknownErr.Error(), unverifiedErr.Error(),
			"login link failures must not reveal whether the address exists")
		assert.Equal(t, sentBefore, gateway.sent())
	})
}

func TestService_VerifyAndLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("verifies the account and clears the token", func(t *testing.T) {
		t.Parallel()

		svc, storage, gateway := newTestService()

		registered, err := svc.Register(ctx, "alice@example.com")
		require.NoError(t, err)

		user, err := svc.VerifyAndLogin(ctx, gateway.lastToken(t))
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
		assert.True(t, user.EmailVerified)
		assert.Empty(t, user.Username)
		assert.Equal(t, StateVerifiedNoUsername, user.State())

		stored, err := storage.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, stored.EmailVerified)
		assert.Nil(t, stored.VerificationToken)
		assert.Nil(t, stored.VerificationTokenExpiresAt)
	})

	t.Run("token is single use", func(t *testing.T) {
		t.Parallel()

		svc, _, gateway := newTestService()

		_, err := svc.Register(ctx, "alice@example.com")
		require.NoError(t, err)
		tok := gateway.lastToken(t)

		_, err = svc.VerifyAndLogin(ctx, tok)
		require.NoError(t, err)

		_, err = svc.VerifyAndLogin(ctx, tok)
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		clock := func() time.Time { return now }
		svc, _, gateway := newTestService(WithClock(func() time.Time { return clock() }))

		_, err := svc.Register(ctx, "alice@example.com")
		require.NoError(t, err)
		tok := gateway.lastToken(t)

		now = now.Add(DefaultTokenTTL + time.Minute)

		_, err = svc.VerifyAndLogin(ctx, tok)
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})

	t.Run("custom ttl is honored", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		clock := func() time.Time { return now }
		svc, _, gateway := newTestService(
			WithClock(func() time.Time { return clock() }),
			WithTokenTTL(time.Hour),
		)

		_, err := svc.Register(ctx, "alice@example.com")
		require.NoError(t, err)
		tok := gateway.lastToken(t)

		now = now.Add(61 * time.Minute)

		_, err = svc.VerifyAndLogin(ctx, tok)
		assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})

	t.Run("malformed and unknown tokens fail identically", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newTestService()

		wellFormed := strings.Repeat("a", 43)
		for _, tok := range []string{"", "garbage", wellFormed} {
			_, err := svc.VerifyAndLogin(ctx, tok)
			assert.ErrorIs(t, err, ErrInvalidOrExpiredToken, "token %q", tok)
		}
	})
}

func TestService_CompleteOnboarding(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("assigns the username", func(t *testing.T) {
		t.Parallel()

		svc, _, gateway := newTestService()
		verified := registerVerified(t, svc, gateway, "alice@example.com")

		user, err := svc.CompleteOnboarding(ctx, verified.ID, "alice_01")
		require.NoError(t, err)
		assert.Equal(t, "alice_01", user.Username)
		assert.Equal(t, StateFullyOnboarded, user.State())
	})

	t.Run("lowercases and trims the username", func(t *testing.T) {
		t.Parallel()

		svc, _, gateway := newTestService()
		verified := registerVerified(t, svc, gateway, "alice@example.com")

		user, err := svc.CompleteOnboarding(ctx, verified.ID, "  Alice ")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("rejects a taken username", func(t *testing.T) {
		t.Parallel()

		svc, _, gateway := newTestService()
		first := registerVerified(t, svc, gateway, "alice@example.com")
		second := registerVerified(t, svc, gateway, "bob@example.com")

		_, err := svc.CompleteOnboarding(ctx, first.ID, "ripple_fan")
		require.NoError(t, err)

		_, err = svc.CompleteOnboarding(ctx, second.ID, "ripple_fan")
		assert.ErrorIs(t, err, ErrUsernameTaken)

		// The loser's account is untouched and can pick another name.
		user, err := svc.CompleteOnboarding(ctx, second.ID, "other_name")
		require.NoError(t, err)
		assert.Equal(t, "other_name", user.Username)
	})

	t.Run("resubmitting the same username succeeds", func(t *testing.T) {
		t.Parallel()

		svc, _, gateway := newTestService()
		verified := registerVerified(t, svc, gateway, "alice@example.com")

		_, err := svc.CompleteOnboarding(ctx, verified.ID, "alice")
		require.NoError(t, err)

		user, err := svc.CompleteOnboarding(ctx, verified.ID, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("rejects invalid usernames", func(t *testing.T) {
		t.Parallel()

		svc, _, gateway := newTestService()
		verified := registerVerified(t, svc, gateway, "alice@example.com")

		for _, name := range []string{"", "ab", strings.Repeat("x", 21), "with space", "bad!chars", "no-dashes"} {
			_, err := svc.CompleteOnboarding(ctx, verified.ID, name)
			assert.ErrorIs(t, err, ErrInvalidUsername, "username %q", name)
		}
	})

	t.Run("requires a verified email", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newTestService()

		pending, err := svc.Register(ctx, "pending@example.com")
		require.NoError(t, err)

		_, err = svc.CompleteOnboarding(ctx, pending.ID, "pending_user")
		assert.ErrorIs(t, err, ErrNotVerified)
	})

	t.Run("unknown user id", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newTestService()

		_, err := svc.CompleteOnboarding(ctx, uuid.New(), "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_FullFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, storage, gateway := newTestService()

	// Register, verify, onboard.
	registered, err := svc.Register(ctx, "Full.Flow@Example.com")
	require.NoError(t, err)
	assert.Equal(t, StatePendingVerification, registered.State())

	verified, err := svc.VerifyAndLogin(ctx, gateway.lastToken(t))
	require.NoError(t, err)
	assert.Equal(t, StateVerifiedNoUsername, verified.State())

	onboarded, err := svc.CompleteOnboarding(ctx, verified.ID, "full_flow")
	require.NoError(t, err)
	assert.Equal(t, StateFullyOnboarded, onboarded.State())

	byName, err := storage.GetUserByUsername(ctx, "full_flow")
	require.NoError(t, err)
	assert.Equal(t, onboarded.ID, byName.ID)

	// Later: a login link round trip.
	_, err = svc.RequestLoginLink(ctx, "full.flow@example.com")
	require.NoError(t, err)

	again, err := svc.VerifyAndLogin(ctx, gateway.lastToken(t))
	require.NoError(t, err)
	assert.Equal(t, onboarded.ID, again.ID)
	assert.Equal(t, "full_flow", again.Username)
	assert.Equal(t, StateFullyOnboarded, again.State())
}
