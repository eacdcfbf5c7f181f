package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"household-ledger/internal/apperrors"

	"golang.org/x/crypto/argon2"
)

// MinPasswordLength is the minimum number of characters in a password.
const MinPasswordLength = 12

// SaltSize is the number of random bytes in a per-user salt.
const SaltSize = 16

// Params is the argon2id work factor. Hashes record the params they were
// made with, so changing Params only affects new hashes.
type Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32
}

// DefaultParams is the work factor used when none is configured.
var DefaultParams = Params{Time: 1, MemoryKiB: 64 * 1024, Threads: 2, KeyLen: 32}

// ValidatePassword enforces the password policy: at least MinPasswordLength
// characters including at least one letter and one digit.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperrors.ErrWeakPassword
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return apperrors.ErrWeakPassword
	}
	return nil
}

// NewSalt returns SaltSize random bytes, base64 encoded.
func NewSalt() (string, error) {
	b := make([]byte, SaltSize)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawStdEncoding.EncodeToString(b), nil
}

// HashPassword derives an argon2id key from password and the encoded salt.
// The result has the form $argon2id$v=19$m=<kib>,t=<time>,p=<threads>$<key>.
func HashPassword(password, salt string, p Params) (string, error) {
	rawSalt, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("decode salt: %w", err)
	}
	if p.KeyLen == 0 {
		p.KeyLen = DefaultParams.KeyLen
	}
	key := argon2.IDKey([]byte(password), rawSalt, p.Time, p.MemoryKiB, p.Threads, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s",
		argon2.Version, p.MemoryKiB, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// CheckPassword reports whether password matches the stored hash. The
// comparison runs in constant time.
func CheckPassword(password, salt, encoded string) bool {
	p, key, err := decodeHash(encoded)
	if err != nil {
		return false
	}
	rawSalt, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil {
		return false
	}
	candidate := argon2.IDKey([]byte(password), rawSalt, p.Time, p.MemoryKiB, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(candidate, key) == 1
}

func decodeHash(encoded string) (Params, []byte, error) {
	var p Params
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[1] != "argon2id" {
		return p, nil, fmt.Errorf("unsupported hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, err
	}
	if version != argon2.Version {
		return p, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Time, &p.Threads); err != nil {
		return p, nil, err
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, err
	}
	p.KeyLen = uint32(len(key))
	return p, key, nil
}
