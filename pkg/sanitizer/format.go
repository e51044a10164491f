package sanitizer

import (
	"regexp"
	"strings"
)

var dotRegex = regexp.MustCompile(`\.+`)

// NormalizeEmail lower-cases and trims an email address and consolidates
// consecutive dots in the local part. Invalid shapes are returned unchanged so
// validation can report them against the original input.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	local := parts[0]
	domain := parts[1]

	local = dotRegex.ReplaceAllString(local, ".")
	local = strings.Trim(local, ".")

	return local + "@" + domain
}

// TrimToLower trims surrounding whitespace and lower-cases the value.
func TrimToLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
