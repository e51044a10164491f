package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Manager handles session lifecycle and the cookie transport.
type Manager struct {
	store  Store
	config Config
}

// Option configures a Manager during construction.
type Option func(*Manager)

// WithStore sets the session storage backend.
func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// New creates a session manager. Without an explicit store an in-memory one
// is used.
func New(config Config, opts ...Option) *Manager {
	m := &Manager{config: config}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore(config.CleanupInterval)
	}

	return m
}

// Get retrieves the session identified by the request cookie.
func (m *Manager) Get(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.config.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoToken
	}

	return m.store.Get(ctx, cookie.Value)
}

// Authenticate establishes an authenticated session for userID and sets the
// response cookie. Any session previously referenced by the request is
// deleted and a fresh token issued, so a token captured before login is
// worthless afterwards.
func (m *Manager) Authenticate(ctx context.Context, w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*Session, error) {
	if old, err := m.Get(ctx, r); err == nil {
		_ = m.store.Delete(ctx, old.Token)
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	session := NewSession(token, &userID, m.config.TTL)
	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}

	m.setCookie(w, token, m.config.TTL)
	return session, nil
}

// Destroy removes the current session and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	session, err := m.Get(ctx, r)
	if err == nil {
		if err := m.store.Delete(ctx, session.Token); err != nil {
			return err
		}
	}

	m.clearCookie(w)
	return nil
}

func (m *Manager) setCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// generateToken returns a 256-bit random session token.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
