package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage defines the persistence operations the auth flow requires. Every
// lookup either returns a user or ErrNotFound; CreateUser and Save return
// ErrConflict on a uniqueness violation. Implementations must serialize
// conflicting writes to the same user, email or username: the flow's
// correctness under concurrent requests rests on the store, not on in-process
// locking.
type Storage interface {
	// CreateUser inserts a fresh unverified user for email.
	CreateUser(ctx context.Context, email string) (*User, error)

	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// GetUserByLiveToken resolves the user holding tok with an expiry after
	// now. A missing, expired or already-consumed token is ErrNotFound in all
	// three cases; callers cannot tell them apart, which keeps the endpoint
	// useless as a token-existence oracle.
	GetUserByLiveToken(ctx context.Context, tok string, now time.Time) (*User, error)

	// ConsumeLiveToken atomically resolves a live token, marks the user
	// verified, clears the token pair and touches last-seen. The
	// check-and-clear must be a single atomic step so two concurrent requests
	// cannot both spend the same token.
	ConsumeLiveToken(ctx context.Context, tok string, now time.Time) (*User, error)

	// Save persists the full current state of the user.
	Save(ctx context.Context, user *User) error
}
