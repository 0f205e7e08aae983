package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/slok/activator/internal/jobclient"
	"github.com/slok/activator/internal/log"
	"github.com/slok/activator/internal/model"
)

// ClientConfig is the configuration for the fake job client.
type ClientConfig struct {
	// PendingChecks is the number of checks that report a pending job before completion.
	PendingChecks int
	// RejectInit makes init calls return success=false.
	RejectInit bool
	Logger     log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.PendingChecks < 0 {
		return fmt.Errorf("pending checks can't be negative")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "jobclient.Fake"})
	return nil
}

// Client is a fake jobclient.Client that simulates a provisioning backend in memory.
// Every init starts a new job that completes after the configured pending checks.
type Client struct {
	pendingChecks int
	rejectInit    bool
	remaining     int
	calls         []model.ActionName
	mu            sync.Mutex
	logger        log.Logger
}

var _ jobclient.Client = (*Client)(nil)

// NewClient creates a new fake job client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		pendingChecks: cfg.PendingChecks,
		rejectInit:    cfg.RejectInit,
		remaining:     cfg.PendingChecks,
		logger:        cfg.Logger,
	}, nil
}

// Clean resets the simulated job.
func (c *Client) Clean(ctx context.Context, a model.Action) (*jobclient.ActionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, model.ActionClean)
	c.remaining = c.pendingChecks
	c.logger.Debugf("Cleaned fake job")

	return &jobclient.ActionResult{Success: true}, nil
}

// Init starts the simulated job.
func (c *Client) Init(ctx context.Context, a model.Action) (*jobclient.ActionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, model.ActionInit)
	if c.rejectInit {
		return &jobclient.ActionResult{Success: false, Message: "fake init rejected"}, nil
	}
	c.remaining = c.pendingChecks
	c.logger.Debugf("Started fake job")

	return &jobclient.ActionResult{Success: true}, nil
}

// Check reports the simulated job status.
func (c *Client) Check(ctx context.Context, a model.Action) (*jobclient.CheckResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, model.ActionCheck)
	if c.remaining > 0 {
		c.remaining--
		return &jobclient.CheckResult{Status: "pending", Success: true}, nil
	}

	return &jobclient.CheckResult{Status: jobclient.CheckStatusCompleted, Success: true}, nil
}

// Finish disables the simulated job.
func (c *Client) Finish(ctx context.Context, a model.Action) (*jobclient.ActionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, model.ActionFinish)
	c.remaining = c.pendingChecks

	return &jobclient.ActionResult{Success: true}, nil
}

// Calls returns the actions called so far, in order.
func (c *Client) Calls() []model.ActionName {
	c.mu.Lock()
	defer c.mu.Unlock()

	calls := make([]model.ActionName, len(c.calls))
	copy(calls, c.calls)
	return calls
}
