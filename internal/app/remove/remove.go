package remove

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/activator/internal/log"
	"github.com/slok/activator/internal/model"
	"github.com/slok/activator/internal/storage"
)

// ServiceConfig is the configuration for the remove service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Remove"})

	return nil
}

// Service removes a step and its recorded attempts.
type Service struct {
	repo   storage.StepRepository
	logger log.Logger
}

// NewService creates a new remove service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the remove request parameters.
type Request struct {
	StepID string
	// Force allows removing a step whose job is still in progress.
	Force bool
}

// Run removes a step.
// If the step job is in progress and Force is false, it returns an error.
func (s *Service) Run(ctx context.Context, req Request) (*model.Step, error) {
	s.logger.Debugf("removing step: %s (force: %v)", req.StepID, req.Force)

	if req.StepID == "" {
		return nil, fmt.Errorf("step id is required: %w", model.ErrNotValid)
	}

	step, err := s.repo.GetStep(ctx, req.StepID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("step not found: %s: %w", req.StepID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get step: %w", err)
	}

	if step.Status == model.StepStatusInProgress && !req.Force {
		return nil, fmt.Errorf("cannot remove a step in progress without --force: %w", model.ErrNotValid)
	}

	if err := s.repo.DeleteStep(ctx, step.ID); err != nil {
		return nil, fmt.Errorf("could not delete step from repository: %w", err)
	}

	s.logger.Infof("removed step: %s", step.ID)
	return step, nil
}
