// Package logger standardises structured logging across the application.
//
// It exposes a single factory, New, that builds a *slog.Logger from a Config
// (typically loaded from the environment), plus helper attribute constructors
// so log records use consistent keys everywhere: user_id is always "user_id",
// an error is always "error", and so on.
package logger
