// Package cryptox implements the sealed-blob format used by the credential
// vault and the Argon2id password verifier used by the account store.
//
// A sealed blob is nonce || ciphertext+tag produced by AES-256-GCM, so a
// single opaque byte string round-trips through storage without separate
// nonce bookkeeping.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/cyberwise/cyberwise-core/internal/common"
)

// KeySize is the required symmetric key length in bytes (AES-256).
const KeySize = 32

// GenerateKey returns a fresh random 256-bit key.
func GenerateKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}

// Seal encrypts plaintext with AES-GCM under key and returns the combined
// blob nonce||ciphertext. A new random nonce is generated per call.
//
// Returns an error wrapping common.ErrorCryptoFailure if the key is unusable.
func Seal(plaintext, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aead.NonceSize())
	sealed := aead.Seal(nil, nonce, plaintext, nil)

	return append(nonce, sealed...), nil
}

// Open decrypts a combined blob produced by Seal. It fails with an error
// wrapping common.ErrorCryptoFailure if the blob is truncated, tampered
// with, or was sealed under a different key.
func Open(blob, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(blob) < aead.NonceSize() {
		return nil, fmt.Errorf("%w: blob shorter than nonce", common.ErrorCryptoFailure)
	}

	nonce, ciphertext := blob[:aead.NonceSize()], blob[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorCryptoFailure, err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorCryptoFailure, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorCryptoFailure, err)
	}
	return aead, nil
}
