package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. The m/t/p values are baked into the encoded prefix
// below, so changing one invalidates every stored hash.
const (
	saltLength  = 16
	keyLength   = 32
	timeCost    = 3
	memoryCost  = 64 * 1024
	parallelism = 2
)

const hashPrefix = "$argon2id$v=19$m=65536,t=3,p=2$"

// HashPassword derives an argon2id hash of the password under a fresh
// random salt, encoded as $argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, timeCost, memoryCost, parallelism, keyLength)

	return hashPrefix +
		base64.RawStdEncoding.EncodeToString(salt) + "$" +
		base64.RawStdEncoding.EncodeToString(hash), nil
}

// VerifyPassword reports whether password matches an encoded hash produced
// by HashPassword. The comparison is constant time.
func VerifyPassword(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, errors.New("invalid hash format")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, err
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, timeCost, memoryCost, parallelism, keyLength)
	return subtle.ConstantTimeCompare(computed, hash) == 1, nil
}
