package auth

import (
	"time"

	"github.com/google/uuid"
)

// AccountState describes how far an account has progressed through the
// onboarding flow.
type AccountState string

const (
	StatePendingVerification AccountState = "pending_verification"
	StateVerifiedNoUsername  AccountState = "verified_no_username"
	StateFullyOnboarded      AccountState = "fully_onboarded"
)

// User represents an account. Username is empty until onboarding completes;
// the token pair is nil except while a verification link is outstanding, and
// both fields are always set or cleared together.
type User struct {
	ID            uuid.UUID
	Email         string
	Username      string
	Bio           string
	EmailVerified bool
	Active        bool
	CreatedAt     time.Time
	LastSeenAt    time.Time

	VerificationToken          *string
	VerificationTokenExpiresAt *time.Time
}

// State derives the account state from the record.
func (u User) State() AccountState {
	switch {
	case !u.EmailVerified:
		return StatePendingVerification
	case u.Username == "":
		return StateVerifiedNoUsername
	default:
		return StateFullyOnboarded
	}
}

// HasLiveToken reports whether a verification token is outstanding and not
// yet expired at the given instant.
func (u User) HasLiveToken(now time.Time) bool {
	return u.VerificationToken != nil &&
		u.VerificationTokenExpiresAt != nil &&
		u.VerificationTokenExpiresAt.After(now)
}

// The transition functions below are pure: each takes a User value and
// returns the updated value, leaving persistence to the Storage. A previously
// outstanding token is invalidated simply by being overwritten, so at most
// one token is ever live per user.

// withToken returns a copy of u carrying a fresh verification token.
func (u User) withToken(tok string, expiresAt time.Time) User {
	u.VerificationToken = &tok
	u.VerificationTokenExpiresAt = &expiresAt
	return u
}

// verified returns a copy of u with the email confirmed, the token pair
// consumed and the last-seen timestamp touched. EmailVerified is monotonic:
// nothing ever sets it back to false.
func (u User) verified(now time.Time) User {
	u.EmailVerified = true
	u.VerificationToken = nil
	u.VerificationTokenExpiresAt = nil
	u.LastSeenAt = now
	return u
}

// withUsername returns a copy of u with the username set.
func (u User) withUsername(name string) User {
	u.Username = name
	return u
}
