// Package session provides cookie-based HTTP sessions.
//
// A session is an opaque random token stored in an HttpOnly cookie and mapped
// server-side to a Session record. The Manager handles issuing, looking up,
// authenticating and destroying sessions; storage is pluggable (in-memory for
// development and tests, Redis for multi-instance deployments).
//
// The auth flow only needs three operations: Authenticate after a verified
// magic link, Get to resolve the current user, and Destroy on logout. Token
// rotation on authentication prevents session fixation.
package session
