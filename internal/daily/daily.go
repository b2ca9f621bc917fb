// Package daily derives the path of the day.
//
// Every player who asks for a daily round on the same UTC date gets the
// same walk for a given length. The walk is seeded from HMAC(salt, date), so
// it cannot be predicted without the salt.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns the two PCG seed words for date using HMAC(salt, YYYY-MM-DD).
func Seed(date time.Time, salt string) (uint64, uint64) {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])
}

// Source returns a fresh deterministic random source for date.
// Sources are not safe for concurrent use; take a new one per path.
func Source(date time.Time, salt string) *rand.Rand {
	return rand.New(rand.NewPCG(Seed(date, salt)))
}
