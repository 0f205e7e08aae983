package stepimport

import (
	"context"
	"fmt"

	"github.com/slok/activator/internal/log"
	"github.com/slok/activator/internal/model"
	"github.com/slok/activator/internal/storage"
)

// ServiceConfig is the configuration for the import service.
type ServiceConfig struct {
	FileRepository storage.StepFileRepository
	StepRepository storage.StepRepository
	Logger         log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.FileRepository == nil {
		return fmt.Errorf("file repository is required")
	}

	if c.StepRepository == nil {
		return fmt.Errorf("step repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.StepImport"})

	return nil
}

// Service imports step descriptors from a steps file into the step registry.
type Service struct {
	fileRepo storage.StepFileRepository
	stepRepo storage.StepRepository
	logger   log.Logger
}

// NewService creates a new import service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		fileRepo: cfg.FileRepository,
		stepRepo: cfg.StepRepository,
		logger:   cfg.Logger,
	}, nil
}

// Request represents the import request parameters.
type Request struct {
	// Path is the steps file path.
	Path string
	// Vars override the variables declared by the steps file.
	Vars map[string]string
}

// Run loads the steps file and stores every step, replacing the ones with the same ID.
// The file is fully validated before any step is stored.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Step, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("steps file path is required: %w", model.ErrNotValid)
	}

	steps, err := s.fileRepo.GetSteps(ctx, req.Path, req.Vars)
	if err != nil {
		return nil, fmt.Errorf("could not load steps file: %w", err)
	}

	for _, step := range steps {
		if err := s.stepRepo.UpsertStep(ctx, step); err != nil {
			return nil, fmt.Errorf("could not store step %q: %w", step.ID, err)
		}
		s.logger.Debugf("imported step %s (%s)", step.ID, step.Status)
	}

	s.logger.Infof("imported %d steps from %s", len(steps), req.Path)
	return steps, nil
}
