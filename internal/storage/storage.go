package storage

import (
	"context"

	"github.com/slok/activator/internal/model"
)

// StepRepository is the interface for step descriptor persistence.
type StepRepository interface {
	// UpsertStep creates the step or replaces the stored one with the same ID.
	UpsertStep(ctx context.Context, s model.Step) error
	GetStep(ctx context.Context, id string) (*model.Step, error)
	// ListSteps returns the steps sorted by ID.
	ListSteps(ctx context.Context) ([]model.Step, error)
	UpdateStepStatus(ctx context.Context, id string, status model.StepStatus) error
	DeleteStep(ctx context.Context, id string) error
}

// AttemptRepository is the interface for activation attempt persistence.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, a model.Attempt) error
	// ListAttempts returns the attempts of a step, newest first.
	ListAttempts(ctx context.Context, stepID string) ([]model.Attempt, error)
}

// StepFileRepository loads step descriptors from files.
type StepFileRepository interface {
	// GetSteps loads the steps of a file, vars override the file template variables.
	GetSteps(ctx context.Context, path string, vars map[string]string) ([]model.Step, error)
}
