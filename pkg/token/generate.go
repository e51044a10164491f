package token

import (
	"crypto/rand"
	"encoding/base64"
)

// rawLen is the number of random bytes per token, 256 bits of entropy.
const rawLen = 32

// encodedLen is the unpadded base64url length of a generated token.
const encodedLen = 43

// Generate returns a new opaque token suitable for use in verification links.
func Generate() (string, error) {
	buf := make([]byte, rawLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
