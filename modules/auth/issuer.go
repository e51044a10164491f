package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/ripplesns/ripple/pkg/token"
)

// TokenIssuer creates and consumes single-use verification tokens. Issuing
// overwrites any token previously outstanding for the user, so at most one is
// ever live; consuming is delegated to the Storage's atomic check-and-clear.
type TokenIssuer struct {
	storage Storage
	now     func() time.Time
}

// NewTokenIssuer creates an issuer bound to storage.
func NewTokenIssuer(storage Storage) *TokenIssuer {
	return &TokenIssuer{storage: storage, now: time.Now}
}

// Issue generates a fresh token for user with the given TTL, persists it and
// returns the token string. The user value is updated in place so callers see
// the new token fields.
func (i *TokenIssuer) Issue(ctx context.Context, user *User, ttl time.Duration) (string, error) {
	tok, err := token.Generate()
	if err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}

	updated := user.withToken(tok, i.now().Add(ttl))
	if err := i.storage.Save(ctx, &updated); err != nil {
		return "", fmt.Errorf("persist verification token: %w", err)
	}

	*user = updated
	return tok, nil
}

// Consume spends tok: the holder is marked verified, the token pair cleared
// and last-seen touched, all in one atomic storage step. Returns ErrNotFound
// when the token does not resolve, is expired or was already spent.
func (i *TokenIssuer) Consume(ctx context.Context, tok string) (*User, error) {
	return i.storage.ConsumeLiveToken(ctx, tok, i.now())
}
