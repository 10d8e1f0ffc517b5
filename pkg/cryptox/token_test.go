package cryptox_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/regain/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Each test binary gets its own throwaway pepper.
	dir, err := os.MkdirTemp("", "cryptox-test-*")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestNewOpaqueToken(t *testing.T) {
	t.Run("produces url-safe tokens of expected length", func(t *testing.T) {
		token, err := cryptox.NewOpaqueToken(cryptox.TokenSize256)
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(token)
		require.NoError(t, err)
		require.Len(t, raw, cryptox.TokenSize256)
	})

	t.Run("rejects non-positive sizes", func(t *testing.T) {
		_, err := cryptox.NewOpaqueToken(0)
		require.Error(t, err)
		_, err = cryptox.NewOpaqueToken(-1)
		require.Error(t, err)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		seen := make(map[string]struct{}, 100)
		for range 100 {
			token := cryptox.MustNewOpaqueToken(cryptox.TokenSize128)
			_, dup := seen[token]
			require.False(t, dup, "duplicate token generated")
			seen[token] = struct{}{}
		}
	})
}

func TestDigestToken(t *testing.T) {
	t.Run("digest is deterministic", func(t *testing.T) {
		token := cryptox.MustNewOpaqueToken(cryptox.TokenSize256)
		require.Equal(t, cryptox.DigestToken(token), cryptox.DigestToken(token))
	})

	t.Run("distinct tokens digest differently", func(t *testing.T) {
		a := cryptox.MustNewOpaqueToken(cryptox.TokenSize256)
		b := cryptox.MustNewOpaqueToken(cryptox.TokenSize256)
		require.NotEqual(t, cryptox.DigestToken(a), cryptox.DigestToken(b))
	})

	t.Run("verify matches only the original plaintext", func(t *testing.T) {
		token := cryptox.MustNewOpaqueToken(cryptox.TokenSize256)
		digest := cryptox.DigestToken(token)

		require.True(t, cryptox.VerifyTokenDigest(token, digest))
		require.False(t, cryptox.VerifyTokenDigest(token+"x", digest))
		require.False(t, cryptox.VerifyTokenDigest("", digest))
	})
}
