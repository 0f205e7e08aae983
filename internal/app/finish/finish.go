package finish

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/activator/internal/jobclient"
	"github.com/slok/activator/internal/log"
	"github.com/slok/activator/internal/model"
	"github.com/slok/activator/internal/storage"
)

// ServiceConfig is the configuration for the finish service.
type ServiceConfig struct {
	Repository storage.StepRepository
	Client     jobclient.Client
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Client == nil {
		return fmt.Errorf("job client is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Finish"})

	return nil
}

// Service disables the resources provisioned by a step.
type Service struct {
	repo   storage.StepRepository
	client jobclient.Client
	logger log.Logger
}

// NewService creates a new finish service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		client: cfg.Client,
		logger: cfg.Logger,
	}, nil
}

// Request represents the finish request parameters.
type Request struct {
	StepID string
}

// Run calls the finish action of the step. When the job accepts it, the step is
// back to not started so it can be activated again.
func (s *Service) Run(ctx context.Context, req Request) (*model.Step, error) {
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

	action, ok := step.Action(model.ActionFinish)
	if !ok {
		return nil, fmt.Errorf("step %q has no %q action: %w", step.ID, model.ActionFinish, model.ErrActionMissing)
	}

	res, err := s.client.Finish(ctx, action)
	if err != nil {
		return nil, fmt.Errorf("could not finish step: %w", err)
	}
	if res == nil || !res.Success {
		msg := "finish rejected"
		if res != nil && res.Message != "" {
			msg = res.Message
		}
		return nil, fmt.Errorf("step %q finish was rejected: %s", step.ID, msg)
	}

	if err := s.repo.UpdateStepStatus(ctx, step.ID, model.StepStatusNotStarted); err != nil {
		return nil, fmt.Errorf("could not update step status: %w", err)
	}
	step.Status = model.StepStatusNotStarted

	s.logger.Infof("finished step: %s", step.ID)
	return step, nil
}
