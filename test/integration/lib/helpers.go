package lib

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	sdklib "github.com/slok/activator/pkg/lib"
)

// NewConfig skips the test if the activation env var is not set.
func NewConfig(t *testing.T) {
	t.Helper()

	const envActivation = "ACTIVATOR_INTEGRATION"

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}
}

// Timings keep the REST activations short.
var Timings = sdklib.Timings{
	FastInterval:      10 * time.Millisecond,
	SlowInterval:      20 * time.Millisecond,
	IdleInterval:      30 * time.Millisecond,
	SlowTierWindow:    100 * time.Millisecond,
	SettleDelay:       10 * time.Millisecond,
	AnimationInterval: 10 * time.Millisecond,
}

// NewTestClient creates an SDK client with a temp SQLite DB for test isolation.
// The client uses the REST backend.
func NewTestClient(t *testing.T, headers map[string]string) *sdklib.Client {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	client, err := sdklib.New(context.Background(), sdklib.Config{
		DBPath:      dbPath,
		Backend:     sdklib.BackendREST,
		Headers:     headers,
		CallTimeout: 5 * time.Second,
		Timings:     Timings,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

// ImportSteps writes a steps file and imports it.
func ImportSteps(t *testing.T, client *sdklib.Client, content string) []sdklib.Step {
	t.Helper()

	path := filepath.Join(t.TempDir(), "steps.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	steps, err := client.ImportSteps(context.Background(), path, nil)
	require.NoError(t, err)

	return steps
}
