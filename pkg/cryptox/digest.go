package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for token digests. Tokens already carry 256 bits of
// entropy, so the cost here is protection against a leaked store being
// cross-checked offline with cheap hardware, not against dictionary attacks.
const (
	digestMemory      = 19 * 1024 // KiB
	digestIterations  = 2
	digestParallelism = 1
	digestKeyLength   = 32
)

// DigestToken computes the at-rest digest of a plaintext token.
//
// Unlike a password hash the digest must be deterministic so the store can
// look a token up by its digest. The salt is therefore derived from the
// service pepper rather than random: without the pepper file an attacker who
// obtains the store cannot verify guesses at all.
func DigestToken(plaintext string) string {
	salt := digestSalt()
	sum := argon2.IDKey(
		[]byte(plaintext),
		salt,
		digestIterations,
		digestMemory,
		digestParallelism,
		digestKeyLength,
	)
	return base64.RawURLEncoding.EncodeToString(sum)
}

// VerifyTokenDigest reports whether plaintext digests to the stored value,
// comparing in constant time.
func VerifyTokenDigest(plaintext, digest string) bool {
	computed := DigestToken(plaintext)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

// digestSalt derives a fixed-length salt from the pepper. HMAC keyed with a
// static label keeps the salt distinct from any other pepper-derived value.
func digestSalt() []byte {
	mac := hmac.New(sha256.New, []byte(GetPepper()))
	mac.Write([]byte("regain/token-digest/v1"))
	return mac.Sum(nil)[:16]
}
