package sharecode

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"
)

// Alphabet excludes the visually ambiguous I, O, 0 and 1.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateSecret returns n random characters drawn uniformly from Alphabet.
func GenerateSecret(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	limit := big.NewInt(int64(len(Alphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(Alphabet[idx.Int64()])
	}
	return b.String(), nil
}

// NormalizeSecret strips whitespace and dashes and upper-cases the input so
// "abcd-efgh jkmn" and "ABCDEFGHJKMN" are the same code.
func NormalizeSecret(raw string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '-':
			return -1
		}
		return r
	}, raw))
}

// checkSecret enforces the minimum length and the alphanumeric charset on a
// normalized secret.
func checkSecret(secret string, minLen int) error {
	if len(secret) < minLen {
		return ErrInvalidSecret
	}
	for i := 0; i < len(secret); i++ {
		c := secret[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return ErrInvalidSecret
		}
	}
	return nil
}

// CodeHash binds a secret to its owner: SHA-256 of secret + ":" + ownerID.
func CodeHash(secret string, ownerID uint64) string {
	return digest(secret + ":" + strconv.FormatUint(ownerID, 10))
}

// LookupHash is the owner-independent SHA-256 of the secret used to find
// candidate codes in the index.
func LookupHash(secret string) string { return digest(secret) }

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
