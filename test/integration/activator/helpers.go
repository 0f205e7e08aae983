package activator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/activator/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "activator"
	}

	// go test changes the CWD to the test package directory, relative paths
	// would point to the wrong binary.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("ACTIVATOR_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("activator binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "ACTIVATOR_INTEGRATION"
		envBinary     = "ACTIVATOR_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		Binary: os.Getenv(envBinary),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// RunActivatorCmd runs an activator command with the given arguments and a specific db path.
// It suppresses logging output for cleaner test output.
func RunActivatorCmd(ctx context.Context, config Config, dbPath, cmdArgs string) (stdout, stderr []byte, err error) {
	args := fmt.Sprintf("--no-log --db-path %s %s", dbPath, cmdArgs)
	return testutils.RunActivator(ctx, nil, config.Binary, args, true)
}

// RunImport imports a steps file.
func RunImport(ctx context.Context, config Config, dbPath, stepsFile string) (stdout, stderr []byte, err error) {
	return RunActivatorCmd(ctx, config, dbPath, fmt.Sprintf("import --file %s --format json", stepsFile))
}

// RunList lists the steps in JSON.
func RunList(ctx context.Context, config Config, dbPath string) (stdout, stderr []byte, err error) {
	return RunActivatorCmd(ctx, config, dbPath, "list --format json")
}

// RunStatus gets the status of a step in JSON.
func RunStatus(ctx context.Context, config Config, dbPath, stepID string) (stdout, stderr []byte, err error) {
	return RunActivatorCmd(ctx, config, dbPath, fmt.Sprintf("status %s --format json", stepID))
}

// RunActivate activates a step with the JSON output and without progress bar.
func RunActivate(ctx context.Context, config Config, dbPath, stepID string) (stdout, stderr []byte, err error) {
	return RunActivatorCmd(ctx, config, dbPath, fmt.Sprintf("activate %s --no-progress --format json", stepID))
}

// RunFinish finishes a step.
func RunFinish(ctx context.Context, config Config, dbPath, stepID string) (stdout, stderr []byte, err error) {
	return RunActivatorCmd(ctx, config, dbPath, fmt.Sprintf("finish %s", stepID))
}

// RunRm removes a step forcefully.
func RunRm(ctx context.Context, config Config, dbPath, stepID string) (stdout, stderr []byte, err error) {
	return RunActivatorCmd(ctx, config, dbPath, fmt.Sprintf("rm %s --force", stepID))
}
