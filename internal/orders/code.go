package orders

import (
	"crypto/rand"
	"time"
)

// Crockford-ish alphabet: no 0/O/1/I lookalikes, stays readable over the phone.
const codeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const codeSuffixLen = 6

// NewCode builds a human-readable order code, e.g. FD-20260831-7K3M9Q.
// Uniqueness is enforced by the DB; callers retry with a fresh code on a
// conflict instead of failing the checkout.
func NewCode(now time.Time) string {
	buf := make([]byte, codeSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand failure means the host is broken
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return "FD-" + now.Format("20060102") + "-" + string(buf)
}
