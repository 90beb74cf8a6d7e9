package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrSecretNotConfigured means the verifier cannot authenticate anything.
// It must never degrade to accept-all.
var ErrSecretNotConfigured = errors.New("webhook secret is not configured")

// Verifier decides whether one inbound webhook request was sent by the
// billing provider. It is a pure check; callers are responsible for logging.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify authenticates the exact raw request body. When a signature header
// is present it is compared against hex(HMAC-SHA256(secret, body)); otherwise
// an authorization header is compared against the shared secret directly.
// Both comparisons are constant-time (hmac.Equal) so verification time does
// not leak the position of the first mismatched byte. A malformed signature
// is an ordinary mismatch, not a distinct failure mode.
//
// The body must be the bytes as received on the wire. Re-serialized JSON
// would change the signed content and break verification, so callers verify
// before parsing, never after.
func (v *Verifier) Verify(body []byte, signatureHeader, authHeader string) (bool, error) {
	if len(v.secret) == 0 {
		return false, ErrSecretNotConfigured
	}

	if signatureHeader != "" {
		mac := hmac.New(sha256.New, v.secret)
		mac.Write(body)
		expected := hex.EncodeToString(mac.Sum(nil))
		return hmac.Equal([]byte(expected), []byte(signatureHeader)), nil
	}

	if authHeader != "" {
		presented := strings.TrimPrefix(authHeader, "Bearer ")
		return hmac.Equal([]byte(presented), v.secret), nil
	}

	return false, nil
}

// Sign computes the hex HMAC-SHA256 signature for body. Exposed for tests
// and local tooling that needs to forge provider deliveries.
func (v *Verifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
