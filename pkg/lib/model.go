package lib

import (
	"errors"
	"time"

	"github.com/slok/activator/internal/model"
	"github.com/slok/activator/internal/progress"
)

var (
	// ErrNotFound is returned when a step does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned on invalid input or operation.
	ErrNotValid = errors.New("not valid")
	// ErrActionMissing is returned when a step does not expose a required remote action.
	ErrActionMissing = errors.New("action missing")
)

// BackendType identifies the job backend the step actions are sent to.
type BackendType string

const (
	// BackendREST calls the step actions as JSON HTTP endpoints.
	BackendREST BackendType = "rest"
	// BackendFake simulates the jobs in memory, every job completes on its first check.
	// Use this for testing without a provisioning backend.
	BackendFake BackendType = "fake"
)

// StepStatus is the server reported status of a step.
type StepStatus string

const (
	StepStatusNotStarted StepStatus = "not_started"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusCompleted  StepStatus = "completed"
	StepStatusFailed     StepStatus = "failed"
	StepStatusBlocked    StepStatus = "blocked"
)

// Phase is the lifecycle phase of an activation.
//
// The typical lifecycle is:
//
//	idle -> initializing -> polling -> success
//
// An activation ends in error when a remote action fails, and in blocked when
// the step can't be activated by the client.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseInitializing Phase = "initializing"
	PhasePolling      Phase = "polling"
	PhaseSuccess      Phase = "success"
	PhaseError        Phase = "error"
	PhaseBlocked      Phase = "blocked"
)

// Action is a remote action of a step.
type Action struct {
	URL    string
	Method string
}

// StepError is an error reported by the server on a step.
type StepError struct {
	Message string
	Code    string
}

// Step is a provisioning step stored in the registry.
type Step struct {
	ID     string
	Title  string
	Status StepStatus
	// Actions are keyed by action name: init, clean, check and finish.
	Actions   map[string]Action
	Errors    []StepError
	UpdatedAt time.Time
}

// ActivationState is the observable state of an activation.
type ActivationState struct {
	StepID string
	Phase  Phase
	// Progress is an estimation in [0, 100], only 100 on success.
	Progress int
	// PollingTier is 0 (fast), 1 (slow) or 2 (idle).
	PollingTier  int
	RetryCount   int
	ErrorMessage string
	// SlowTierStartedAt is when the polling entered the slow tier, nil before.
	SlowTierStartedAt *time.Time
}

// Attempt is the recorded outcome of an activation attempt.
type Attempt struct {
	ID           string
	StepID       string
	Phase        Phase
	Progress     int
	RetryCount   int
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Timings tune the activation cadence. Zero values use the defaults.
type Timings struct {
	// FastInterval is the delay between checks while the progress is low. Default 3s.
	FastInterval time.Duration
	// SlowInterval is the delay between checks after the fast tier. Default 5s.
	SlowInterval time.Duration
	// IdleInterval is the delay between checks once the job takes long. Default 7s.
	IdleInterval time.Duration
	// SlowTierWindow is the time in the slow tier before going idle. Default 30s.
	SlowTierWindow time.Duration
	// SettleDelay is the pause between the job completion and the success. Default 1s.
	SettleDelay time.Duration
	// AnimationInterval is the cadence of the initialization progress animation. Default 1s.
	AnimationInterval time.Duration
}

func (t Timings) toInternal() progress.Config {
	return progress.Config{
		FastInterval:      t.FastInterval,
		SlowInterval:      t.SlowInterval,
		IdleInterval:      t.IdleInterval,
		SlowTierWindow:    t.SlowTierWindow,
		SettleDelay:       t.SettleDelay,
		AnimationInterval: t.AnimationInterval,
	}
}

func fromInternalStep(s model.Step) Step {
	step := Step{
		ID:        s.ID,
		Title:     s.Title,
		Status:    StepStatus(s.Status),
		UpdatedAt: s.UpdatedAt,
	}

	if len(s.Actions) > 0 {
		step.Actions = make(map[string]Action, len(s.Actions))
		for name, a := range s.Actions {
			step.Actions[string(name)] = Action{URL: a.URL, Method: a.Method}
		}
	}

	for _, e := range s.Errors {
		step.Errors = append(step.Errors, StepError{Message: e.Message, Code: e.Code})
	}

	return step
}

func fromInternalStepList(ss []model.Step) []Step {
	result := make([]Step, len(ss))
	for i, s := range ss {
		result[i] = fromInternalStep(s)
	}
	return result
}

func fromInternalState(s model.ActivationState) ActivationState {
	return ActivationState{
		StepID:            s.StepID,
		Phase:             Phase(s.Phase),
		Progress:          s.Progress,
		PollingTier:       s.PollingTier,
		RetryCount:        s.RetryCount,
		ErrorMessage:      s.ErrorMessage,
		SlowTierStartedAt: s.SlowTierStartedAt,
	}
}

func fromInternalAttemptList(as []model.Attempt) []Attempt {
	result := make([]Attempt, len(as))
	for i, a := range as {
		result[i] = Attempt{
			ID:           a.ID,
			StepID:       a.StepID,
			Phase:        Phase(a.Phase),
			Progress:     a.Progress,
			RetryCount:   a.RetryCount,
			ErrorMessage: a.ErrorMessage,
			StartedAt:    a.StartedAt,
			FinishedAt:   a.FinishedAt,
		}
	}
	return result
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return &mappedError{original: err, sentinel: ErrNotFound}
	case errors.Is(err, model.ErrAlreadyExists):
		return &mappedError{original: err, sentinel: ErrAlreadyExists}
	case errors.Is(err, model.ErrActionMissing):
		return &mappedError{original: err, sentinel: ErrActionMissing}
	case errors.Is(err, model.ErrNotValid):
		return &mappedError{original: err, sentinel: ErrNotValid}
	default:
		return err
	}
}

// mappedError keeps the internal error chain and matches the public sentinel.
type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool { return target == e.sentinel }

func (e *mappedError) Unwrap() error { return e.original }
