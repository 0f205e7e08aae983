package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/activator/internal/log"
	"github.com/slok/activator/internal/model"
	"github.com/slok/activator/internal/storage"
)

var (
	_ storage.StepRepository    = (*Repository)(nil)
	_ storage.AttemptRepository = (*Repository)(nil)
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of the step and attempt repositories.
type Repository struct {
	steps    map[string]model.Step
	attempts map[string][]model.Attempt
	mu       sync.RWMutex
	logger   log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		steps:    make(map[string]model.Step),
		attempts: make(map[string][]model.Attempt),
		logger:   cfg.Logger,
	}, nil
}

// UpsertStep stores a step, replacing the stored one with the same ID.
func (r *Repository) UpsertStep(ctx context.Context, s model.Step) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid step: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.steps[s.ID] = copyStep(s)
	r.logger.Debugf("Stored step in repository: %s", s.ID)

	return nil
}

// GetStep retrieves a step by ID.
func (r *Repository) GetStep(ctx context.Context, id string) (*model.Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	step, ok := r.steps[id]
	if !ok {
		return nil, fmt.Errorf("step %s: %w", id, model.ErrNotFound)
	}

	stepCopy := copyStep(step)
	return &stepCopy, nil
}

// ListSteps returns all steps sorted by ID.
func (r *Repository) ListSteps(ctx context.Context) ([]model.Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	steps := make([]model.Step, 0, len(r.steps))
	for _, id := range slices.Sorted(maps.Keys(r.steps)) {
		steps = append(steps, copyStep(r.steps[id]))
	}

	return steps, nil
}

// UpdateStepStatus sets the status of a stored step.
func (r *Repository) UpdateStepStatus(ctx context.Context, id string, status model.StepStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q: %w", status, model.ErrNotValid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	step, ok := r.steps[id]
	if !ok {
		return fmt.Errorf("step %s: %w", id, model.ErrNotFound)
	}

	step.Status = status
	step.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	r.steps[id] = step
	r.logger.Debugf("Updated step %s status: %s", id, status)

	return nil
}

// DeleteStep deletes a step and its attempts.
func (r *Repository) DeleteStep(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.steps[id]; !ok {
		return fmt.Errorf("step %s: %w", id, model.ErrNotFound)
	}

	delete(r.steps, id)
	delete(r.attempts, id)
	r.logger.Debugf("Deleted step from repository: %s", id)

	return nil
}

// CreateAttempt stores an activation attempt. An ID is generated if missing.
func (r *Repository) CreateAttempt(ctx context.Context, a model.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.steps[a.StepID]; !ok {
		return fmt.Errorf("step %s: %w", a.StepID, model.ErrNotFound)
	}

	if a.ID == "" {
		a.ID = ulid.Make().String()
	}
	for _, existing := range r.attempts[a.StepID] {
		if existing.ID == a.ID {
			return fmt.Errorf("attempt with id %s: %w", a.ID, model.ErrAlreadyExists)
		}
	}

	r.attempts[a.StepID] = append(r.attempts[a.StepID], a)
	r.logger.Debugf("Created attempt %s for step %s", a.ID, a.StepID)

	return nil
}

// ListAttempts returns the attempts of a step, newest first.
func (r *Repository) ListAttempts(ctx context.Context, stepID string) ([]model.Attempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Last stored first on finish time ties.
	attempts := slices.Clone(r.attempts[stepID])
	slices.Reverse(attempts)
	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].FinishedAt.After(attempts[j].FinishedAt)
	})

	return attempts, nil
}

func copyStep(s model.Step) model.Step {
	s.Actions = maps.Clone(s.Actions)
	s.Errors = slices.Clone(s.Errors)
	return s
}
