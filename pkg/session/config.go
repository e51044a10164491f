package session

import "time"

// Config holds session settings sourced from the environment.
type Config struct {
	CookieName      string        `env:"SESSION_COOKIE_NAME" envDefault:"ripple_session"`
	TTL             time.Duration `env:"SESSION_TTL" envDefault:"744h"` // 31 days, matching permanent login links
	SecureCookies   bool          `env:"SESSION_SECURE_COOKIES" envDefault:"true"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"10m"`
	RedisURL        string        `env:"SESSION_REDIS_URL"` // empty selects the in-memory store
}
