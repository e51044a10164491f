package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ripplesns/ripple/pkg/logger"
	"github.com/ripplesns/ripple/pkg/sanitizer"
	"github.com/ripplesns/ripple/pkg/token"
	"github.com/ripplesns/ripple/pkg/validator"
)

// DefaultTokenTTL is how long verification and login links stay valid.
const DefaultTokenTTL = 24 * time.Hour

// usernamePattern constrains usernames to word characters; length is checked
// separately so the two failures read differently in validation output.
const usernamePattern = `^[A-Za-z0-9_]+$`

const (
	usernameMinLen = 3
	usernameMaxLen = 20
)

// Service drives the registration, verification, login-link and onboarding
// flow. All collaborators are injected; substitute in-memory fakes in tests.
type Service struct {
	storage  Storage
	issuer   *TokenIssuer
	gateway  NotificationGateway
	log      *slog.Logger
	baseURL  string
	tokenTTL time.Duration
	now      func() time.Time
}

// Option configures a Service during construction.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithTokenTTL sets the verification token lifetime. Registration and login
// links share the value; pass a different Service if they ever need to split.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.tokenTTL = ttl
	}
}

// WithClock overrides the time source, for tests exercising expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.issuer.now = now
	}
}

// NewService creates the auth orchestrator. baseURL is the external address
// verification links are built against, e.g. "https://app.example.com".
func NewService(storage Storage, gateway NotificationGateway, baseURL string, opts ...Option) *Service {
	s := &Service{
		storage:  storage,
		issuer:   NewTokenIssuer(storage),
		gateway:  gateway,
		log:      logger.NewDiscard(),
		baseURL:  baseURL,
		tokenTTL: DefaultTokenTTL,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register starts or restarts registration for email. A verified address is
// rejected with ErrAlreadyRegistered; an unverified one gets its pending
// record reused so repeated submissions never create duplicates. Either way
// a single live token remains outstanding afterwards.
func (s *Service) Register(ctx context.Context, email string) (*User, error) {
	email = sanitizer.NormalizeEmail(email)
	if err := validator.Apply(
		validator.Required("email", email),
		validator.ValidEmail("email", email),
	); err != nil {
		return nil, errors.Join(ErrInvalidEmail, err)
	}

	user, err := s.storage.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if user.EmailVerified {
			return nil, ErrAlreadyRegistered
		}
		// Unverified: reuse the record, issue a fresh token below.
	case errors.Is(err, ErrNotFound):
		user, err = s.storage.CreateUser(ctx, email)
		if err != nil {
			if errors.Is(err, ErrConflict) {
				// Lost a race with a concurrent registration for the same
				// address; pick up the record the winner created.
				user, err = s.storage.GetUserByEmail(ctx, email)
			}
			if err != nil {
				return nil, fmt.Errorf("create user: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if err := s.sendLink(ctx, user); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "verification link issued",
		logger.UserID(user.ID.String()),
		logger.Event("register"),
		logger.Component("auth"),
	)
	return user, nil
}

// RequestLoginLink mails a fresh sign-in link to a verified address. Unknown
// and unverified emails fail identically with ErrNotEligible so the endpoint
// does not reveal which addresses exist.
func (s *Service) RequestLoginLink(ctx context.Context, email string) (*User, error) {
	email = sanitizer.NormalizeEmail(email)

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotEligible
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if !user.EmailVerified {
		return nil, ErrNotEligible
	}

	if err := s.sendLink(ctx, user); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "login link issued",
		logger.UserID(user.ID.String()),
		logger.Event("request_login_link"),
		logger.Component("auth"),
	)
	return user, nil
}

// VerifyAndLogin spends a verification token. On success the user is
// verified, the token cleared and the caller should establish a session for
// the returned user; an empty Username tells the caller to route to
// onboarding. Invalid, expired and already-spent tokens are indistinguishable.
func (s *Service) VerifyAndLogin(ctx context.Context, tok string) (*User, error) {
	// Shape check first: garbage never reaches storage.
	if err := token.Validate(tok); err != nil {
		return nil, ErrInvalidOrExpiredToken
	}

	user, err := s.issuer.Consume(ctx, tok)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("consume token: %w", err)
	}

	s.log.InfoContext(ctx, "email verified, user logged in",
		logger.UserID(user.ID.String()),
		logger.Event("verify"),
		logger.Component("auth"),
	)
	return user, nil
}

// CompleteOnboarding assigns the user's unique username. Requires a verified
// email; re-submitting the username already held succeeds so the operation
// is idempotent.
func (s *Service) CompleteOnboarding(ctx context.Context, userID uuid.UUID, username string) (*User, error) {
	username = sanitizer.TrimToLower(username)
	if err := validator.Apply(
		validator.Required("username", username),
		validator.MinLen("username", username, usernameMinLen),
		validator.MaxLen("username", username, usernameMaxLen),
		validator.MatchesRegex("username", username, usernamePattern, "letters, numbers and underscores"),
	); err != nil {
		return nil, errors.Join(ErrInvalidUsername, err)
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Unreachable through the router's own gating, but the storage is public
	// enough that a direct caller could get here unverified.
	if !user.EmailVerified {
		return nil, ErrNotVerified
	}

	if username != user.Username {
		if holder, err := s.storage.GetUserByUsername(ctx, username); err == nil && holder.ID != user.ID {
			return nil, ErrUsernameTaken
		} else if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("check username: %w", err)
		}

		updated := user.withUsername(username)
		if err := s.storage.Save(ctx, &updated); err != nil {
			if errors.Is(err, ErrConflict) {
				// Lost a race on the unique username index.
				return nil, ErrUsernameTaken
			}
			return nil, fmt.Errorf("save username: %w", err)
		}
		user = &updated
	}

	s.log.InfoContext(ctx, "onboarding completed",
		logger.UserID(user.ID.String()),
		logger.Event("complete_onboarding"),
		logger.Component("auth"),
	)
	return user, nil
}

// User returns the account for id. Used by authenticated surfaces to resolve
// the session's user.
func (s *Service) User(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.storage.GetUserByID(ctx, id)
}

// sendLink issues a fresh token and hands the verification URL to the
// gateway. Token persistence happens strictly before delivery; a gateway
// failure is the gateway's to log and never ours to surface.
func (s *Service) sendLink(ctx context.Context, user *User) error {
	tok, err := s.issuer.Issue(ctx, user, s.tokenTTL)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/auth/verify/%s", s.baseURL, tok)
	_ = s.gateway.DeliverVerificationLink(ctx, user.Email, url)
	return nil
}
