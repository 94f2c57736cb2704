package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// NewID returns an unguessable identifier with a type prefix, e.g.
// "lot_3f2a...". The random part is a 128-bit UUID rendered as hex.
func NewID(prefix string) string {
	id := uuid.New()
	return prefix + hex.EncodeToString(id[:])
}

// ShortCode returns a human-readable code of length n drawn from the
// receipt alphabet. Collisions are not checked; the code is a
// secondary confirmation factor, not the secret.
func ShortCode(n int) (string, error) {
	alphabet := ReceiptCodeAlphabet
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}

// DayKey returns the UTC calendar-day key used for daily rate-limit
// windows
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
