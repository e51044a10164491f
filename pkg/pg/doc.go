// Package pg wraps pgx connection management for the application.
//
// It provides pool construction with retry, goose-driven schema migrations
// routed through the application logger, a health check closure, and error
// classification helpers so callers can translate SQLSTATE codes into domain
// errors without importing pgconn everywhere.
package pg
