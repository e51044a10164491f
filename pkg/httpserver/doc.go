// Package httpserver wraps net/http's Server with graceful shutdown, timeout
// configuration from the environment, and a health check handler suitable for
// liveness and readiness probes.
package httpserver
