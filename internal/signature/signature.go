// Package signature validates GitHub webhook signatures.
package signature

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
)

// Prefix is the scheme GitHub prepends to the hex digest in the
// X-Hub-Signature header.
const Prefix = "sha1="

// Verify reports whether presented matches the HMAC-SHA1 digest of
// body keyed by secret, formatted as "sha1=<hex>". The comparison is
// constant time. An empty or malformed presented signature simply
// fails the comparison; Verify never panics.
func Verify(secret string, body []byte, presented string) bool {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	expected := Prefix + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(presented))
}
