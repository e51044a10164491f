package token

import "encoding/base64"

// Validate reports whether s has the shape of a token produced by Generate.
// It is a cheap pre-filter so handlers can reject garbage without a storage
// round trip; passing validation says nothing about the token being live.
func Validate(s string) error {
	if len(s) != encodedLen {
		return ErrInvalidToken
	}
	if _, err := base64.RawURLEncoding.DecodeString(s); err != nil {
		return ErrInvalidToken
	}
	return nil
}
