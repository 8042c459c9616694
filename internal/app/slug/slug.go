// Package slug generates short URL-safe identifiers for links.
package slug

import (
	"crypto/rand"
	"math/big"
)

// Length is the fixed slug size. At 62^7 combinations, collisions against
// a realistic corpus are negligible; the links table's unique index plus a
// bounded retry in the service layer covers the remainder.
const Length = 7

const charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var maxIdx = big.NewInt(int64(len(charset)))

// Generate returns a random 7-character Base62 slug. Each call is
// statistically independent; uniqueness is enforced at insert time.
func Generate() (string, error) {
	b := make([]byte, Length)
	for i := range b {
		n, err := rand.Int(rand.Reader, maxIdx)
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}
	return string(b), nil
}
