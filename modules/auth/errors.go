package auth

import "errors"

// Storage errors
var (
	ErrNotFound = errors.New("user not found")
	ErrConflict = errors.New("record already exists")
)

// Flow errors. All of these are expected, user-recoverable conditions; the
// router maps them to a message and severity, never to a 5xx.
var (
	ErrAlreadyRegistered     = errors.New("email already registered and verified")
	ErrNotEligible           = errors.New("email not registered or not verified")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired verification token")
	ErrNotVerified           = errors.New("email address not verified")
	ErrUsernameTaken         = errors.New("username already taken")
	ErrInvalidUsername       = errors.New("invalid username")
	ErrInvalidEmail          = errors.New("invalid email address")
)
