package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default activator data directory name (relative to home).
	DefaultDataDir = ".activator"
	// DBFile is the step registry database filename.
	DBFile = "activator.db"
	// DefaultStepsFile is the steps file imported when none is given.
	DefaultStepsFile = "steps.yaml"
	// EnvPrefix is the prefix of the environment variables that set the CLI flags.
	EnvPrefix = "ACTIVATOR"
)

// DBPath returns the step registry database path inside the data dir of a home directory.
func DBPath(homeDir string) string {
	return filepath.Join(homeDir, DefaultDataDir, DBFile)
}
