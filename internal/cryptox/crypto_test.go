package cryptox

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cyberwise/cyberwise-core/internal/common"
)

func TestSealOpen_RoundTrip(t *testing.T) {
	key := GenerateKey()

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"simple", []byte("S3cret!")},
		{"empty", []byte{}},
		{"binary", []byte{0, 1, 2, 255, 254}},
		{"long", []byte(strings.Repeat("correct horse battery staple ", 100))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := Seal(tt.plaintext, key)
			require.NoError(t, err)
			require.NotEqual(t, tt.plaintext, blob)

			got, err := Open(blob, key)
			require.NoError(t, err)
			require.Equal(t, tt.plaintext, got)
		})
	}
}

func TestSeal_NoncesDiffer(t *testing.T) {
	key := GenerateKey()
	a, err := Seal([]byte("x"), key)
	require.NoError(t, err)
	b, err := Seal([]byte("x"), key)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestOpen_WrongKey(t *testing.T) {
	blob, err := Seal([]byte("secret"), GenerateKey())
	require.NoError(t, err)

	_, err = Open(blob, GenerateKey())
	require.ErrorIs(t, err, common.ErrorCryptoFailure)
}

func TestOpen_Tampered(t *testing.T) {
	key := GenerateKey()
	blob, err := Seal([]byte("secret"), key)
	require.NoError(t, err)

	blob[len(blob)-1] ^= 0xff
	_, err = Open(blob, key)
	require.ErrorIs(t, err, common.ErrorCryptoFailure)
}

func TestOpen_TruncatedBlob(t *testing.T) {
	_, err := Open([]byte{1, 2, 3}, GenerateKey())
	require.ErrorIs(t, err, common.ErrorCryptoFailure)
}

func TestSeal_BadKeyLength(t *testing.T) {
	_, err := Seal([]byte("x"), []byte("short"))
	require.ErrorIs(t, err, common.ErrorCryptoFailure)
}

func TestHashVerifyPassword(t *testing.T) {
	encoded, err := HashPassword("Passw0rd!")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "$argon2id$"))
	require.NotContains(t, encoded, "Passw0rd!")

	ok, err := VerifyPassword("Passw0rd!", encoded)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword("wrong", encoded)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    error
	}{
		{"empty", "", ErrInvalidHashFormat},
		{"not phc", "plaintext", ErrInvalidHashFormat},
		{"wrong algo", "$bcrypt$v=19$m=1,t=1,p=1$aaaa$bbbb", ErrInvalidHashFormat},
		{"bad version", "$argon2id$v=999$m=65536,t=1,p=4$aaaa$bbbb", ErrIncompatibleVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyPassword("x", tt.encoded)
			require.True(t, errors.Is(err, tt.want))
		})
	}
}
