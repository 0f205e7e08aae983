package lib

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/slok/activator/internal/conventions"
	"github.com/slok/activator/internal/jobclient"
	"github.com/slok/activator/internal/jobclient/fake"
	"github.com/slok/activator/internal/jobclient/rest"
	"github.com/slok/activator/internal/log"
	"github.com/slok/activator/internal/storage/sqlite"
)

// Config configures the SDK client.
//
// All fields are optional. An empty Config{} uses ~/.activator/activator.db as
// the step registry and calls the step actions over HTTP.
type Config struct {
	// DBPath is the SQLite step registry path.
	// Default: ~/.activator/activator.db.
	DBPath string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger

	// Backend selects where the step actions are sent. Default: [BackendREST].
	Backend BackendType

	// HTTPClient is used by [BackendREST]. Default: http.DefaultClient.
	HTTPClient *http.Client

	// Headers are set on every action call, e.g. authentication.
	Headers map[string]string

	// CallTimeout is the max duration of a single action call. Default: 30s.
	CallTimeout time.Duration

	// Timings tune the activation cadence.
	Timings Timings
}

func (c *Config) defaults() error {
	if c.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DBPath = conventions.DBPath(home)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	if c.Backend == "" {
		c.Backend = BackendREST
	}

	return nil
}

// Client is the main SDK entry point to manage and activate steps programmatically.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	steps    *sqlite.Repository
	attempts *sqlite.AttemptRepository
	jobs     jobclient.Client
	timings  Timings
	logger   log.Logger
}

// New creates a new SDK client backed by a SQLite database.
//
// The caller must call [Client.Close] when done to release the database
// connection.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	jobs, err := newJobClient(cfg)
	if err != nil {
		return nil, mapError(err)
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: filepath.Clean(cfg.DBPath),
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	attemptRepo, err := sqlite.NewAttemptRepository(sqlite.AttemptRepositoryConfig{
		DB:     repo.DB(),
		Logger: cfg.Logger,
	})
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("could not create attempt repository: %w", err)
	}

	return &Client{
		steps:    repo,
		attempts: attemptRepo,
		jobs:     jobs,
		timings:  cfg.Timings,
		logger:   cfg.Logger,
	}, nil
}

// Close releases resources held by the client, including the database connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	return c.steps.Close()
}

func newJobClient(cfg Config) (jobclient.Client, error) {
	switch cfg.Backend {
	case BackendREST:
		return rest.NewClient(rest.ClientConfig{
			HTTPClient: cfg.HTTPClient,
			Headers:    cfg.Headers,
			Timeout:    cfg.CallTimeout,
			Logger:     cfg.Logger,
		})
	case BackendFake:
		return fake.NewClient(fake.ClientConfig{Logger: cfg.Logger})
	default:
		return nil, fmt.Errorf("unsupported backend type: %s: %w", cfg.Backend, ErrNotValid)
	}
}
