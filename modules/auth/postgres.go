package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ripplesns/ripple/pkg/pg"
)

// PostgresStorage implements Storage on a pgx connection pool. Uniqueness of
// email, username and token rests on the unique indexes in the users table;
// token consumption is a single conditional UPDATE so a token can never be
// spent twice even under concurrent requests.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates a Postgres-backed user store.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

const userColumns = `id, email, COALESCE(username, ''), COALESCE(bio, ''), email_verified, is_active,
	created_at, last_seen_at, verification_token, verification_token_expires_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.Bio, &u.EmailVerified, &u.Active,
		&u.CreatedAt, &u.LastSeenAt, &u.VerificationToken, &u.VerificationTokenExpiresAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a fresh unverified user for email.
func (s *PostgresStorage) CreateUser(ctx context.Context, email string) (*User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, created_at, last_seen_at)
		VALUES ($1, $2, now(), now())
		RETURNING `+userColumns,
		uuid.New(), email,
	)

	user, err := scanUser(row)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return user, nil
}

// GetUserByEmail returns the user for email or ErrNotFound.
func (s *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetUserByID returns the user for id or ErrNotFound.
func (s *PostgresStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByUsername returns the user holding username or ErrNotFound.
func (s *PostgresStorage) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

// GetUserByLiveToken resolves tok if it is outstanding and unexpired at now.
func (s *PostgresStorage) GetUserByLiveToken(ctx context.Context, tok string, now time.Time) (*User, error) {
	return scanUser(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE verification_token = $1 AND verification_token_expires_at > $2`,
		tok, now,
	))
}

// ConsumeLiveToken spends tok in one conditional UPDATE: the WHERE clause
// re-checks liveness so only a single concurrent caller can match the row.
func (s *PostgresStorage) ConsumeLiveToken(ctx context.Context, tok string, now time.Time) (*User, error) {
	return scanUser(s.pool.QueryRow(ctx, `
		UPDATE users
		SET email_verified = TRUE,
		    verification_token = NULL,
		    verification_token_expires_at = NULL,
		    last_seen_at = $2
		WHERE verification_token = $1 AND verification_token_expires_at > $2
		RETURNING `+userColumns,
		tok, now,
	))
}

// Save persists the full state of user.
func (s *PostgresStorage) Save(ctx context.Context, user *User) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET email = $2,
		    username = NULLIF($3, ''),
		    bio = NULLIF($4, ''),
		    email_verified = $5,
		    is_active = $6,
		    last_seen_at = $7,
		    verification_token = $8,
		    verification_token_expires_at = $9
		WHERE id = $1`,
		user.ID, user.Email, user.Username, user.Bio, user.EmailVerified,
		user.Active, user.LastSeenAt, user.VerificationToken, user.VerificationTokenExpiresAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("save user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
