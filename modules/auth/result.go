package auth

import "errors"

// Severity categorizes a flow outcome for presentation. The values match the
// alert levels the frontend styles against.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Result is the user-facing outcome of an auth operation: a message ready for
// display plus a severity hint. It never leaks which internal condition
// produced it beyond what the message itself says.
type Result struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Flow result messages. The login and verification failures are deliberately
// uniform: a caller probing the endpoint cannot distinguish an unknown email
// from an unverified one, or an unknown token from an expired or spent one.
const (
	msgRegistered        = "We sent you a confirmation email. Click the link inside to activate your account."
	msgLoginLinkSent     = "We sent you a login link. Check your inbox."
	msgVerified          = "Your email is confirmed. Welcome!"
	msgOnboarded         = "Your username is set. You are all done."
	msgAlreadyRegistered = "This email address is already registered."
	msgNotEligible       = "This email address is not registered or has not been confirmed yet."
	msgBadToken          = "This link is invalid or has expired. Request a new one."
	msgNotVerified       = "Confirm your email address before choosing a username."
	msgUsernameTaken     = "This username is already taken."
	msgInvalidUsername   = "Usernames are 3-20 characters: letters, digits and underscores."
	msgInvalidEmail      = "Enter a valid email address."
	msgInternal          = "Something went wrong. Please try again."
)

// ResultFor maps a flow error to its presentation. A nil error is not a valid
// input; success results are built at the call site where the success message
// is known.
func ResultFor(err error) Result {
	switch {
	case errors.Is(err, ErrAlreadyRegistered):
		return Result{Message: msgAlreadyRegistered, Severity: SeverityDanger}
	case errors.Is(err, ErrNotEligible):
		return Result{Message: msgNotEligible, Severity: SeverityWarning}
	case errors.Is(err, ErrInvalidOrExpiredToken):
		return Result{Message: msgBadToken, Severity: SeverityDanger}
	case errors.Is(err, ErrNotVerified):
		return Result{Message: msgNotVerified, Severity: SeverityWarning}
	case errors.Is(err, ErrUsernameTaken):
		return Result{Message: msgUsernameTaken, Severity: SeverityDanger}
	case errors.Is(err, ErrInvalidUsername):
		return Result{Message: msgInvalidUsername, Severity: SeverityDanger}
	case errors.Is(err, ErrInvalidEmail):
		return Result{Message: msgInvalidEmail, Severity: SeverityDanger}
	default:
		return Result{Message: msgInternal, Severity: SeverityDanger}
	}
}

// statusFor picks the HTTP status code for a flow error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrAlreadyRegistered),
		errors.Is(err, ErrUsernameTaken):
		return 409
	case errors.Is(err, ErrNotEligible),
		errors.Is(err, ErrInvalidOrExpiredToken),
		errors.Is(err, ErrNotVerified):
		return 403
	case errors.Is(err, ErrInvalidUsername),
		errors.Is(err, ErrInvalidEmail):
		return 422
	default:
		return 500
	}
}
