// Package signing implements the gateway's request-signature authentication
// protocol: every request carries a Token computed by the merchant from its
// root-level scalar parameters and a shared secret, which the gateway
// recomputes and compares in constant time.
package signing

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"sort"
	"strings"
)

// Signer computes and verifies request tokens.
//
// Canonicalization (spec'd as "the full scalar set"): every root-level
// parameter whose value is a scalar (string, number, bool — never a nested
// object or array) is included, plus the pair ("Password", secret), all
// sorted by key and concatenated by value only (keys are not part of the
// digest input, mirroring how the ancestor's SHA256Hash helper is used for
// its token fetch). The digest is SHA-256 over that concatenation,
// hex-encoded.
//
// "Password" sorts among the request's own keys by ordinary byte comparison
// — it is not simply appended last. The wire keys the gateway actually signs
// over are lowercase snake_case (amount, currency, merchant_key, order_id,
// ...), and 'P' (0x50) sorts before every lowercase letter, so the secret's
// value lands first in the concatenation for a real request.
type Signer struct{}

// NewSigner returns a ready-to-use Signer. It carries no state: the
// algorithm is pure, so a single zero-value Signer is safe for concurrent use.
func NewSigner() *Signer {
	return &Signer{}
}

// Sign computes the token for params (root-level scalar fields only) and
// the merchant's shared secret.
func (s *Signer) Sign(params map[string]string, password string) string {
	withSecret := make(map[string]string, len(params)+1)
	for k, v := range params {
		withSecret[k] = v
	}
	withSecret["Password"] = password

	keys := make([]string, 0, len(withSecret))
	for k := range withSecret {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(withSecret[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether token matches the signature computed over params
// and password, using a constant-time comparison to avoid timing oracles.
func (s *Signer) Verify(params map[string]string, password, token string) bool {
	expected := s.Sign(params, password)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}

// Fingerprint returns a non-reversible identifier for a card PAN, used to
// spot a merchant resubmitting the same card after a decline without ever
// persisting or logging the PAN itself.
func Fingerprint(pan string) string {
	sum := sha256.Sum256([]byte(pan))
	return hex.EncodeToString(sum[:])[:16]
}
