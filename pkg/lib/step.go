package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slok/activator/internal/app/activate"
	"github.com/slok/activator/internal/app/finish"
	"github.com/slok/activator/internal/app/list"
	"github.com/slok/activator/internal/app/remove"
	"github.com/slok/activator/internal/app/status"
	"github.com/slok/activator/internal/app/stepimport"
	"github.com/slok/activator/internal/model"
	storageio "github.com/slok/activator/internal/storage/io"
)

// ImportSteps loads a YAML steps file and stores its steps in the registry,
// replacing the steps with the same ID. vars override the file `vars` used in
// the `${VAR}` references.
//
// Returns [ErrNotValid] if the file is not valid, nothing is stored in that case.
func (c *Client) ImportSteps(ctx context.Context, path string, vars map[string]string) ([]Step, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve steps file path: %w", err)
	}
	dir, file := filepath.Split(abs)

	svc, err := stepimport.NewService(stepimport.ServiceConfig{
		FileRepository: storageio.NewStepsYAMLRepository(os.DirFS(dir)),
		StepRepository: c.steps,
		Logger:         c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	steps, err := svc.Run(ctx, stepimport.Request{Path: file, Vars: vars})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalStepList(steps), nil
}

// ListSteps returns the steps of the registry sorted by ID. A nil filter lists all of them.
func (c *Client) ListSteps(ctx context.Context, filter *StepStatus) ([]Step, error) {
	svc, err := list.NewService(list.ServiceConfig{
		Repository: c.steps,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	req := list.Request{}
	if filter != nil {
		s := model.StepStatus(*filter)
		req.StatusFilter = &s
	}

	steps, err := svc.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalStepList(steps), nil
}

// GetStep returns a step and its activation attempts, newest first.
//
// Returns [ErrNotFound] if the step does not exist.
func (c *Client) GetStep(ctx context.Context, stepID string) (*Step, []Attempt, error) {
	svc, err := status.NewService(status.ServiceConfig{
		StepRepository:    c.steps,
		AttemptRepository: c.attempts,
		Logger:            c.logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, status.Request{StepID: stepID})
	if err != nil {
		return nil, nil, mapError(err)
	}

	step := fromInternalStep(res.Step)
	return &step, fromInternalAttemptList(res.Attempts), nil
}

// RemoveStep removes a step and its attempts. A step in progress needs force.
//
// Returns [ErrNotFound] if the step does not exist.
func (c *Client) RemoveStep(ctx context.Context, stepID string, force bool) error {
	svc, err := remove.NewService(remove.ServiceConfig{
		Repository: c.steps,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	_, err = svc.Run(ctx, remove.Request{StepID: stepID, Force: force})
	return mapError(err)
}

// ActivateOpts are the optional hooks of an activation.
type ActivateOpts struct {
	// OnState is called on every state change.
	OnState func(s ActivationState)
	// OnCompleted is called once when the activation succeeds.
	OnCompleted func(stepID string)
	// RetryPrompt is called after every failed attempt, returning true retries it.
	RetryPrompt func(ctx context.Context, s ActivationState) bool
}

// ActivationResult is the outcome of an activation.
type ActivationResult struct {
	// Step is the step after the activation, its status reflects the outcome.
	Step Step
	// State is the last activation state.
	State ActivationState
	// Attempts are the attempts made by this activation, oldest first.
	Attempts []Attempt
}

// Activate runs the activation of a step and blocks until it succeeds, fails
// without retry or is blocked. Cancelling the context stops the activation.
//
// A failed or blocked activation is not an error: check [ActivationResult].State.
// Returns [ErrNotFound] if the step does not exist.
func (c *Client) Activate(ctx context.Context, stepID string, opts *ActivateOpts) (*ActivationResult, error) {
	svc, err := activate.NewService(activate.ServiceConfig{
		StepRepository:    c.steps,
		AttemptRepository: c.attempts,
		Client:            c.jobs,
		Progress:          c.timings.toInternal(),
		Logger:            c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	req := activate.Request{StepID: stepID}
	if opts != nil {
		req.Observer = hooks{onState: opts.OnState, onCompleted: opts.OnCompleted}
		if opts.RetryPrompt != nil {
			req.RetryPrompt = func(ctx context.Context, s model.ActivationState) bool {
				return opts.RetryPrompt(ctx, fromInternalState(s))
			}
		}
	}

	res, err := svc.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	return &ActivationResult{
		Step:     fromInternalStep(res.Step),
		State:    fromInternalState(res.State),
		Attempts: fromInternalAttemptList(res.Attempts),
	}, nil
}

// Finish calls the finish action of a step, on success the step can be activated again.
//
// Returns [ErrActionMissing] if the step has no finish action.
func (c *Client) Finish(ctx context.Context, stepID string) (*Step, error) {
	svc, err := finish.NewService(finish.ServiceConfig{
		Repository: c.steps,
		Client:     c.jobs,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	step, err := svc.Run(ctx, finish.Request{StepID: stepID})
	if err != nil {
		return nil, mapError(err)
	}

	result := fromInternalStep(*step)
	return &result, nil
}

// hooks adapts the activation hooks to the controller observer.
type hooks struct {
	onState     func(s ActivationState)
	onCompleted func(stepID string)
}

func (h hooks) StateChanged(s model.ActivationState) {
	if h.onState != nil {
		h.onState(fromInternalState(s))
	}
}

func (h hooks) JustCompleted(stepID string) {
	if h.onCompleted != nil {
		h.onCompleted(stepID)
	}
}
