// Package grantx mints and verifies recovery-grant JWTs: short-lived EdDSA
// signed proofs that an identity completed account recovery. Downstream
// collaborators (e.g. the password-reset flow) verify the grant with the
// public key instead of sharing the token store.
package grantx

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PurposeRecovery is the fixed purpose claim for grants minted by this
// service. Verifiers must reject any other value.
const PurposeRecovery = "account_recovery"

// DefaultGrantTTL bounds how long a completed recovery can be acted on.
const DefaultGrantTTL = 10 * time.Minute

var (
	ErrInvalidGrant = errors.New("grantx: invalid grant")
	ErrWrongPurpose = errors.New("grantx: wrong purpose claim")
)

// Claims carried by a recovery grant. Subject is the recovered user id and
// ID (jti) is the confirmation id of the completed recovery.
type Claims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Signer mints recovery grants with an Ed25519 key held in memory.
type Signer struct {
	key    ed25519.PrivateKey
	public ed25519.PublicKey
	issuer string
	ttl    time.Duration
}

// NewSigner generates a fresh Ed25519 keypair. Grants from a previous process
// lifetime become unverifiable; acceptable since the grant TTL is minutes.
func NewSigner(issuer string, ttl time.Duration) (*Signer, error) {
	public, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("grantx: generate key: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultGrantTTL
	}
	return &Signer{key: key, public: public, issuer: issuer, ttl: ttl}, nil
}

// Sign mints a grant for userID referencing the given confirmation id.
func (s *Signer) Sign(userID, confirmationID string, now time.Time) (string, error) {
	claims := Claims{
		Purpose: PurposeRecovery,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        confirmationID,
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("grantx: sign: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a grant, returning its claims.
func (s *Signer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.public, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidGrant
	}
	if claims.Purpose != PurposeRecovery {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

// PublicKey exposes the verification key for publication to collaborators.
func (s *Signer) PublicKey() ed25519.PublicKey {
	return s.public
}
