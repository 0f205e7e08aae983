package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/slok/activator/internal/jobclient"
	"github.com/slok/activator/internal/log"
	"github.com/slok/activator/internal/model"
)

const maxBodySize = 1 << 20

// ClientConfig is the configuration for the REST job client.
type ClientConfig struct {
	// HTTPClient is the HTTP client used for the action calls.
	HTTPClient *http.Client
	// Headers are set on every request (e.g. authentication).
	Headers map[string]string
	// Timeout is the max duration of a single action call. Default 30s.
	Timeout time.Duration
	Logger  log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout can't be negative")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "jobclient.REST"})
	return nil
}

// Client is a jobclient.Client that calls the step actions as JSON HTTP endpoints.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	timeout    time.Duration
	logger     log.Logger
}

var _ jobclient.Client = (*Client)(nil)

// NewClient returns a new REST job client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		httpClient: cfg.HTTPClient,
		headers:    cfg.Headers,
		timeout:    cfg.Timeout,
		logger:     cfg.Logger,
	}, nil
}

// --- JSON wire types ---

type actionJSON struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type checkJSON struct {
	Status string `json:"status"`
	// Success is optional on checks, a missing value is not a rejection.
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

type errorJSON struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Clean calls the clean action.
func (c *Client) Clean(ctx context.Context, a model.Action) (*jobclient.ActionResult, error) {
	return c.action(ctx, a)
}

// Init calls the init action.
func (c *Client) Init(ctx context.Context, a model.Action) (*jobclient.ActionResult, error) {
	return c.action(ctx, a)
}

// Finish calls the finish action.
func (c *Client) Finish(ctx context.Context, a model.Action) (*jobclient.ActionResult, error) {
	return c.action(ctx, a)
}

// Check calls the check action.
func (c *Client) Check(ctx context.Context, a model.Action) (*jobclient.CheckResult, error) {
	var resp checkJSON
	if err := c.do(ctx, a, &resp); err != nil {
		return nil, err
	}

	success := true
	if resp.Success != nil {
		success = *resp.Success
	}

	return &jobclient.CheckResult{
		Status:  resp.Status,
		Success: success,
		Message: resp.Message,
	}, nil
}

func (c *Client) action(ctx context.Context, a model.Action) (*jobclient.ActionResult, error) {
	var resp actionJSON
	if err := c.do(ctx, a, &resp); err != nil {
		return nil, err
	}

	return &jobclient.ActionResult{
		Success: resp.Success,
		Message: resp.Message,
	}, nil
}

func (c *Client) do(ctx context.Context, a model.Action, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	method := a.Method
	if method == "" {
		method = http.MethodPost
	}

	req, err := http.NewRequestWithContext(ctx, method, a.URL, nil)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	c.logger.Debugf("Calling %s %s", method, a.URL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorJSON
		if json.Unmarshal(body, &e) == nil && e.Message != "" {
			return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, e.Message)
		}
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("malformed response: %w", err)
	}

	return nil
}

// ParseHeaders parses "Key: Value" header specs.
func ParseHeaders(specs []string) (map[string]string, error) {
	headers := make(map[string]string, len(specs))
	for _, spec := range specs {
		k, v, ok := strings.Cut(spec, ":")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid header %q, must be 'Key: Value'", spec)
		}
		headers[http.CanonicalHeaderKey(k)] = strings.TrimSpace(v)
	}

	return headers, nil
}
