package status

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/activator/internal/log"
	"github.com/slok/activator/internal/model"
	"github.com/slok/activator/internal/storage"
)

// ServiceConfig is the configuration for the status service.
type ServiceConfig struct {
	StepRepository    storage.StepRepository
	AttemptRepository storage.AttemptRepository
	Logger            log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.StepRepository == nil {
		return fmt.Errorf("step repository is required")
	}

	if c.AttemptRepository == nil {
		return fmt.Errorf("attempt repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Status"})

	return nil
}

// Service retrieves a step and its activation history.
type Service struct {
	stepRepo    storage.StepRepository
	attemptRepo storage.AttemptRepository
	logger      log.Logger
}

// NewService creates a new status service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		stepRepo:    cfg.StepRepository,
		attemptRepo: cfg.AttemptRepository,
		logger:      cfg.Logger,
	}, nil
}

// Request represents the status request parameters.
type Request struct {
	StepID string
}

// Response is the status of a step.
type Response struct {
	Step model.Step
	// Attempts are the recorded activation attempts, newest first.
	Attempts []model.Attempt
}

// Run retrieves the status of a step.
func (s *Service) Run(ctx context.Context, req Request) (*Response, error) {
	if req.StepID == "" {
		return nil, fmt.Errorf("step id is required: %w", model.ErrNotValid)
	}

	step, err := s.stepRepo.GetStep(ctx, req.StepID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("step not found: %s: %w", req.StepID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get step: %w", err)
	}

	attempts, err := s.attemptRepo.ListAttempts(ctx, step.ID)
	if err != nil {
		return nil, fmt.Errorf("could not list step attempts: %w", err)
	}

	s.logger.Debugf("step %s has %d attempts", step.ID, len(attempts))
	return &Response{Step: *step, Attempts: attempts}, nil
}
