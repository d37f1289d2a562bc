package signature

import (
	"crypto/sha256"
	"encoding/base64"
)

// ContentHash returns the base64-encoded SHA-256 digest of body.
//
// It is only called for requests that carry a body; a zero-length body
// still produces the digest of the empty input.
func ContentHash(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}
