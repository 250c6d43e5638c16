// Package payment verifies signed callbacks from the payment gateway.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Signer computes and checks gateway signatures with a shared secret.
type Signer struct {
	secret []byte
}

// NewSigner returns a signer for secret, or nil when secret is empty.
func NewSigner(secret string) *Signer {
	if secret == "" {
		return nil
	}
	return &Signer{secret: []byte(secret)}
}

// Sign returns the lowercase hex HMAC-SHA256 of "providerOrderID|providerPaymentID".
func (s *Signer) Sign(providerOrderID, providerPaymentID string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(providerOrderID + "|" + providerPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches. The comparison is constant time.
func (s *Signer) Verify(providerOrderID, providerPaymentID, signature string) bool {
	got, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(signature)))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(providerOrderID + "|" + providerPaymentID))
	return hmac.Equal(mac.Sum(nil), got)
}
