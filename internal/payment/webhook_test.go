package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"order_code":"FD-20260831-AAAAAA","status":"PAID"}`)
	secret := "dev-secret"

	sig := Sign(body, secret)
	assert.True(t, VerifySignature(body, sig, secret))
	assert.False(t, VerifySignature(body, sig, "other-secret"))
	assert.False(t, VerifySignature([]byte(`tampered`), sig, secret))
	assert.False(t, VerifySignature(body, "", secret))
}
