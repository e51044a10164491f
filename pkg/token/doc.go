// Package token generates opaque, URL-safe verification tokens.
//
// Tokens carry 256 bits of randomness from crypto/rand and are encoded with
// unpadded base64url so they can be embedded directly in links. They hold no
// payload: all meaning (owner, expiry, single-use state) lives server-side,
// which keeps invalid, expired and already-consumed tokens indistinguishable
// to a caller probing the verification endpoint.
//
// # Usage
//
//	import "github.com/ripplesns/ripple/pkg/token"
//
//	tok, err := token.Generate()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := token.Validate(candidate); err != nil {
//	    // reject before touching storage
//	}
package token
