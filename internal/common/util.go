package common

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateRandByteArray returns n cryptographically random bytes.
// It panics only if the platform CSPRNG is broken, which crypto/rand
// treats as unrecoverable anyway.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// MakeRandHexString generates a random hexadecimal string of the given size.
// The size parameter is the number of random bytes, so the resulting string
// is twice as long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Useful for removing key material from memory after use. A nil
// slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
