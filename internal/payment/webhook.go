package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// WebhookEvent is the asynchronous notification delivered by the gateway.
type WebhookEvent struct {
	OrderCode string `json:"order_code"`
	Status    string `json:"status"` // PAID | CANCELLED | REFUNDED
}

// Sign computes the hex HMAC-SHA256 the gateway puts in X-Gateway-Signature.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook body against its signature header.
func VerifySignature(body []byte, signature, secret string) bool {
	expected := Sign(body, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
