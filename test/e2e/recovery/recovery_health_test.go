package recovery_test

import (
	"testing"

	"github.com/aussiebroadwan/regain/pkg/recoversdk"
	"github.com/stretchr/testify/require"
)

// TestHealthEndpoints verifies both probes respond on a fresh container.
func TestHealthEndpoints(t *testing.T) {
	baseURL, cleanup := setupRecoveryContainer(t)
	defer cleanup()

	client := recoversdk.NewClient(baseURL)
	require.NoError(t, client.Healthy(t.Context()))
}
