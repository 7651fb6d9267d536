/**
 * @description
 * HMAC signature verification for inbound StatTaq webhooks.
 *
 * Key features:
 * - HMAC-SHA256 over the raw request body with the pre-shared secret.
 * - Accepts the signature as standard base64 (StatTaq's documented format)
 *   or hex, compared in constant time via hmac.Equal.
 * - Three-valued result: a deployment without a configured secret yields
 *   SignatureSkipped, which is explicitly distinguishable from a genuinely
 *   verified call. Skipped is a development convenience, not an approval.
 */
package app

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// SignatureResult is the outcome of verifying a webhook signature.
type SignatureResult int

const (
	// SignatureVerified means the HMAC matched byte for byte.
	SignatureVerified SignatureResult = iota
	// SignatureRejected means the signature was missing or did not match.
	SignatureRejected
	// SignatureSkipped means no shared secret is configured; the check was
	// not performed at all.
	SignatureSkipped
)

// String returns the metric/log label for the result.
func (r SignatureResult) String() string {
	switch r {
	case SignatureVerified:
		return "verified"
	case SignatureRejected:
		return "rejected"
	case SignatureSkipped:
		return "skipped"
	}
	return "unknown"
}

// SignatureVerifier checks webhook bodies against the StatTaq shared secret.
type SignatureVerifier struct {
	secret string
}

// NewSignatureVerifier creates a verifier. An empty secret puts the verifier
// into skip mode.
func NewSignatureVerifier(secret string) *SignatureVerifier {
	return &SignatureVerifier{secret: secret}
}

// Sign computes the base64-encoded HMAC-SHA256 of body. Exposed for tests and
// for the outbound-webhook tooling.
func (v *SignatureVerifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify checks the caller-supplied signature against the body.
func (v *SignatureVerifier) Verify(body []byte, provided string) SignatureResult {
	if v.secret == "" {
		return SignatureSkipped
	}

	provided = strings.TrimSpace(provided)
	if provided == "" {
		return SignatureRejected
	}

	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	if decoded, err := base64.StdEncoding.DecodeString(provided); err == nil {
		if hmac.Equal(decoded, expected) {
			return SignatureVerified
		}
	}
	if decoded, err := hex.DecodeString(provided); err == nil {
		if hmac.Equal(decoded, expected) {
			return SignatureVerified
		}
	}
	return SignatureRejected
}
