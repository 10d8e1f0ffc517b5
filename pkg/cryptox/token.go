// Package cryptox provides the cryptographic primitives for recovery tokens:
// opaque token generation and the deterministic peppered digest used to store
// tokens at rest.
package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize128 provides 128 bits of entropy (22 chars base64url).
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy (43 chars base64url). This is
	// the size used for recovery tokens.
	TokenSize256 = 32
)

// NewOpaqueToken creates a cryptographically secure random token of the given
// byte length, encoded base64url without padding. The plaintext is handed to
// the caller exactly once and never persisted.
func NewOpaqueToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MustNewOpaqueToken is like NewOpaqueToken but panics on error. Only for
// initialization paths and tests where failure is unrecoverable.
func MustNewOpaqueToken(size int) string {
	token, err := NewOpaqueToken(size)
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to generate token: %v", err))
	}
	return token
}
