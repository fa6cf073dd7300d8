package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// PaymentVerifier checks a payment gateway signature before registration.
type PaymentVerifier interface {
	Verify(orderID, paymentID, signature string) bool
}

// HMACPaymentVerifier validates signatures computed as
// hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
type HMACPaymentVerifier struct {
	secret []byte
}

// NewHMACPaymentVerifier builds a verifier for the gateway key secret.
func NewHMACPaymentVerifier(secret string) *HMACPaymentVerifier {
	return &HMACPaymentVerifier{secret: []byte(secret)}
}

// Sign returns the expected signature for an order and payment pair.
func (v *HMACPaymentVerifier) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (v *HMACPaymentVerifier) Verify(orderID, paymentID, signature string) bool {
	if len(v.secret) == 0 {
		return false
	}
	expected := v.Sign(orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}
