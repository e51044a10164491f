// Package ratelimiter implements a token bucket rate limiter with pluggable
// storage and an HTTP middleware.
//
// The register and login endpoints trigger outbound email, so they are the
// primary consumers: limiting by client IP keeps a single source from burning
// through the mail quota or spraying verification links.
package ratelimiter
