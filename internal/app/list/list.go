package list

import (
	"context"
	"fmt"

	"github.com/slok/activator/internal/log"
	"github.com/slok/activator/internal/model"
	"github.com/slok/activator/internal/storage"
)

// ServiceConfig is the configuration for the list service.
type ServiceConfig struct {
	Repository storage.StepRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.List"})

	return nil
}

// Service lists steps with optional filtering.
type Service struct {
	repo   storage.StepRepository
	logger log.Logger
}

// NewService creates a new list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the list request parameters.
type Request struct {
	// StatusFilter is an optional filter to only show steps with this status.
	StatusFilter *model.StepStatus
}

// Run lists all steps, optionally filtered by status.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Step, error) {
	if req.StatusFilter != nil && !req.StatusFilter.Valid() {
		return nil, fmt.Errorf("unknown status filter %q: %w", *req.StatusFilter, model.ErrNotValid)
	}

	steps, err := s.repo.ListSteps(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list steps: %w", err)
	}

	if req.StatusFilter != nil {
		filtered := make([]model.Step, 0, len(steps))
		for _, st := range steps {
			if st.Status == *req.StatusFilter {
				filtered = append(filtered, st)
			}
		}
		steps = filtered
	}

	s.logger.Debugf("found %d steps", len(steps))
	return steps, nil
}
