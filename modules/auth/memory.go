package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage implements Storage with in-process maps. It backs tests and
// the development server; the single mutex gives it the same atomic
// read-modify-write guarantees the flow expects from Postgres.
type MemoryStorage struct {
	mu         sync.Mutex
	byID       map[uuid.UUID]*User
	byEmail    map[string]uuid.UUID
	byUsername map[string]uuid.UUID
	byToken    map[string]uuid.UUID
}

// NewMemoryStorage creates an empty in-memory user store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		byID:       make(map[uuid.UUID]*User),
		byEmail:    make(map[string]uuid.UUID),
		byUsername: make(map[string]uuid.UUID),
		byToken:    make(map[string]uuid.UUID),
	}
}

// CreateUser inserts a fresh unverified user for email.
func (m *MemoryStorage) CreateUser(ctx context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[email]; exists {
		return nil, ErrConflict
	}

	now := time.Now()
	user := &User{
		ID:         uuid.New(),
		Email:      email,
		Active:     true,
		CreatedAt:  now,
		LastSeenAt: now,
	}

	m.byID[user.ID] = user
	m.byEmail[email] = user.ID

	out := *user
	return &out, nil
}

// GetUserByEmail returns the user for email or ErrNotFound.
func (m *MemoryStorage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	out := *m.byID[id]
	return &out, nil
}

// GetUserByID returns the user for id or ErrNotFound.
func (m *MemoryStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *user
	return &out, nil
}

// GetUserByUsername returns the user holding username or ErrNotFound.
func (m *MemoryStorage) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	out := *m.byID[id]
	return &out, nil
}

// GetUserByLiveToken resolves tok if it is outstanding and unexpired at now.
func (m *MemoryStorage) GetUserByLiveToken(ctx context.Context, tok string, now time.Time) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, err := m.liveTokenHolder(tok, now)
	if err != nil {
		return nil, err
	}
	out := *user
	return &out, nil
}

// ConsumeLiveToken atomically spends tok: resolves it, marks the holder
// verified, clears the pair and touches last-seen under one lock hold.
func (m *MemoryStorage) ConsumeLiveToken(ctx context.Context, tok string, now time.Time) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, err := m.liveTokenHolder(tok, now)
	if err != nil {
		return nil, err
	}

	updated := user.verified(now)
	*user = updated
	delete(m.byToken, tok)

	out := updated
	return &out, nil
}

// Save persists the full state of user, maintaining the uniqueness indexes.
func (m *MemoryStorage) Save(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.byID[user.ID]
	if !ok {
		return ErrNotFound
	}

	if user.Username != "" {
		if holder, taken := m.byUsername[user.Username]; taken && holder != user.ID {
			return ErrConflict
		}
	}
	if holder, taken := m.byEmail[user.Email]; taken && holder != user.ID {
		return ErrConflict
	}

	// Rebuild index entries that changed.
	if current.Username != user.Username {
		delete(m.byUsername, current.Username)
		if user.Username != "" {
			m.byUsername[user.Username] = user.ID
		}
	}
	if current.Email != user.Email {
		delete(m.byEmail, current.Email)
		m.byEmail[user.Email] = user.ID
	}
	if current.VerificationToken != nil {
		delete(m.byToken, *current.VerificationToken)
	}
	if user.VerificationToken != nil {
		m.byToken[*user.VerificationToken] = user.ID
	}

	saved := *user
	m.byID[user.ID] = &saved
	return nil
}

// liveTokenHolder must be called with the lock held.
func (m *MemoryStorage) liveTokenHolder(tok string, now time.Time) (*User, error) {
	id, ok := m.byToken[tok]
	if !ok {
		return nil, ErrNotFound
	}

	user := m.byID[id]
	if !user.HasLiveToken(now) || *user.VerificationToken != tok {
		return nil, ErrNotFound
	}
	return user, nil
}
