package recovery_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for recovery service end-to-end
 * tests: container setup and shared fixtures.
 */

const testImageName = "regain-test:latest"

// TestMain builds the Docker image once before all tests and removes it
// after the suite completes.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Recovery Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Recovery Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/regain/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// setupRecoveryContainer starts the service with relaxed rate limits so
// functional tests never trip the quota. Rate-limit behaviour itself is
// covered by setupRecoveryContainerWithDefaultRateLimits.
func setupRecoveryContainer(t *testing.T) (string, func()) {
	t.Helper()
	return startContainer(t, map[string]string{
		"REGAIN_DATABASE_FILE": "/tmp/regain.db",
		"REGAIN_PEPPER_FILE":   "/tmp/pepper",
		"ENV":                  "test",
		"LOG_LEVEL":            "info",
		"LOG_FORMAT":           "json",

		// Relaxed limits; functional tests make many rapid requests.
		"RATELIMIT_START_REQUESTS":      "1000",
		"RATELIMIT_START_WINDOW_SEC":    "60",
		"RATELIMIT_VERIFY_REQUESTS":     "1000",
		"RATELIMIT_VERIFY_WINDOW_SEC":   "60",
		"RATELIMIT_COMPLETE_REQUESTS":   "1000",
		"RATELIMIT_COMPLETE_WINDOW_SEC": "60",
		"REGAIN_PUBLIC_RPM":             "1000",
	})
}

// setupRecoveryContainerWithDefaultRateLimits starts the service with the
// production rate-limit tiers, for testing the limiter itself.
func setupRecoveryContainerWithDefaultRateLimits(t *testing.T) (string, func()) {
	t.Helper()
	return startContainer(t, map[string]string{
		"REGAIN_DATABASE_FILE": "/tmp/regain.db",
		"REGAIN_PEPPER_FILE":   "/tmp/pepper",
		"ENV":                  "test",
		"LOG_LEVEL":            "info",
		"LOG_FORMAT":           "json",
	})
}

func startContainer(t *testing.T, env map[string]string) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}
