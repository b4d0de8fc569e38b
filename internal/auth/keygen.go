// Package auth issues, parses and verifies API keys and carries the
// authenticated caller through request contexts.
//
// A key reads fk_{env}_{prefix}_{secret}, for example
// fk_live_7a9f3c_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b. The prefix is stored in
// clear for lookup; only an argon2id hash of the whole key is persisted.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	KeyScheme    = "fk"
	KeyPrefixLen = 6
	KeySecretLen = 32
)

// Key environments. Test keys are issued by non-production deployments so
// a leaked key is recognisable at a glance.
const (
	EnvLive = "live"
	EnvTest = "test"
)

var (
	ErrInvalidKeyFormat = errors.New("invalid API key format")
	ErrInvalidEnv       = errors.New("invalid API key environment")
)

// Key is a syntactically valid API key split into its parts.
type Key struct {
	Env    string
	Prefix string
	Secret string
}

// String reassembles the plaintext key.
func (k Key) String() string {
	return KeyScheme + "_" + k.Env + "_" + k.Prefix + "_" + k.Secret
}

// Issued is a freshly generated key. Plaintext is shown to the owner once
// and then forgotten.
type Issued struct {
	Plaintext string
	Hash      string
	Prefix    string
}

// Issue generates a random key for env and hashes it for storage.
func Issue(env string) (*Issued, error) {
	if env != EnvLive && env != EnvTest {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEnv, env)
	}

	prefix, err := randomHex(KeyPrefixLen / 2)
	if err != nil {
		return nil, fmt.Errorf("generate prefix: %w", err)
	}
	secret, err := randomHex(KeySecretLen / 2)
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	plaintext := Key{Env: env, Prefix: prefix, Secret: secret}.String()
	hash, err := HashKey(plaintext)
	if err != nil {
		return nil, fmt.Errorf("hash key: %w", err)
	}

	return &Issued{Plaintext: plaintext, Hash: hash, Prefix: prefix}, nil
}

// Parse splits s into its parts. Any deviation from the format, including
// upper-case hex, yields ErrInvalidKeyFormat.
func Parse(s string) (Key, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 4 || parts[0] != KeyScheme {
		return Key{}, ErrInvalidKeyFormat
	}

	k := Key{Env: parts[1], Prefix: parts[2], Secret: parts[3]}
	if k.Env != EnvLive && k.Env != EnvTest {
		return Key{}, ErrInvalidKeyFormat
	}
	if !isLowerHex(k.Prefix, KeyPrefixLen) || !isLowerHex(k.Secret, KeySecretLen) {
		return Key{}, ErrInvalidKeyFormat
	}
	return k, nil
}

// Valid reports whether s is a well-formed key. It says nothing about
// whether the key exists.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func isLowerHex(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
