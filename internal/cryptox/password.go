package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/cyberwise/cyberwise-core/internal/common"
)

var (
	ErrInvalidHashFormat   = errors.New("invalid encoded hash format")
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

// hashParams configures the Argon2id hashing parameters.
type hashParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
}

func defaultHashParams() hashParams {
	return hashParams{
		memory:      64 * 1024,
		iterations:  1,
		parallelism: 4,
		saltLength:  16,
		keyLength:   32,
	}
}

// HashPassword hashes a password using Argon2id and returns the hash in PHC
// string format: $argon2id$v=19$m=65536,t=1,p=4$<b64-salt>$<b64-hash>.
func HashPassword(password string) (string, error) {
	p := defaultHashParams()

	salt := common.GenerateRandByteArray(int(p.saltLength))
	hash := argon2.IDKey([]byte(password), salt, p.iterations, p.memory, p.parallelism, p.keyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory,
		p.iterations,
		p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
	return encoded, nil
}

// VerifyPassword reports whether password matches the given PHC-encoded
// Argon2id hash. Comparison is constant-time.
func VerifyPassword(password, encodedHash string) (bool, error) {
	p, salt, hash, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, p.iterations, p.memory, p.parallelism, p.keyLength)

	return subtle.ConstantTimeCompare(hash, candidate) == 1, nil
}

func decodeHash(encodedHash string) (hashParams, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return hashParams{}, nil, nil, ErrInvalidHashFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return hashParams{}, nil, nil, ErrInvalidHashFormat
	}
	if version != argon2.Version {
		return hashParams{}, nil, nil, ErrIncompatibleVersion
	}

	var p hashParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return hashParams{}, nil, nil, ErrInvalidHashFormat
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return hashParams{}, nil, nil, ErrInvalidHashFormat
	}
	p.saltLength = uint32(len(salt))

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return hashParams{}, nil, nil, ErrInvalidHashFormat
	}
	p.keyLength = uint32(len(hash))

	return p, salt, hash, nil
}
