package activate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/run"
	"github.com/oklog/ulid/v2"

	"github.com/slok/activator/internal/clock"
	"github.com/slok/activator/internal/controller"
	"github.com/slok/activator/internal/jobclient"
	"github.com/slok/activator/internal/log"
	"github.com/slok/activator/internal/model"
	"github.com/slok/activator/internal/progress"
	"github.com/slok/activator/internal/storage"
)

// ServiceConfig is the configuration for the activate service.
type ServiceConfig struct {
	StepRepository    storage.StepRepository
	AttemptRepository storage.AttemptRepository
	Client            jobclient.Client
	// Progress holds the activation timings, zero values use the defaults.
	Progress progress.Config
	Logger   log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.StepRepository == nil {
		return fmt.Errorf("step repository is required")
	}

	if c.AttemptRepository == nil {
		return fmt.Errorf("attempt repository is required")
	}

	if c.Client == nil {
		return fmt.Errorf("job client is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Activate"})

	return nil
}

// Service activates a step and waits until the activation ends.
type Service struct {
	stepRepo    storage.StepRepository
	attemptRepo storage.AttemptRepository
	client      jobclient.Client
	progress    progress.Config
	logger      log.Logger
}

// NewService creates a new activate service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		stepRepo:    cfg.StepRepository,
		attemptRepo: cfg.AttemptRepository,
		client:      cfg.Client,
		progress:    cfg.Progress,
		logger:      cfg.Logger,
	}, nil
}

// Request represents the activate request parameters.
type Request struct {
	StepID string
	// Observer is optional, it receives every activation state change.
	Observer controller.Observer
	// RetryPrompt is optional, it's asked after every failed attempt. Returning
	// true retries the activation.
	RetryPrompt func(ctx context.Context, s model.ActivationState) bool
}

// Response is the result of an activation.
type Response struct {
	// Step is the step after the status write back.
	Step model.Step
	// State is the last activation state.
	State model.ActivationState
	// Attempts are the attempts recorded by this activation, in execution order.
	Attempts []model.Attempt
}

// errDone stops the run group once the activation has ended.
var errDone = errors.New("activation done")

// Run activates a step. It returns when the activation reaches a terminal phase
// that is not retried, or when the context is cancelled.
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

	logger := s.logger.WithValues(log.Kv{"step": step.ID})

	loop, err := clock.NewLoop(clock.LoopConfig{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("could not create loop: %w", err)
	}

	runCtx, runCancel := context.WithCancel(ctx)
	defer runCancel()

	terminal := make(chan model.ActivationState, 1)
	observers := controller.Observers{terminalObserver{ctx: runCtx, ch: terminal}}
	if req.Observer != nil {
		observers = append(controller.Observers{req.Observer}, observers...)
	}

	ctrl, err := controller.New(controller.Config{
		Clock:    loop,
		Client:   s.client,
		Observer: observers,
		Progress: s.progress,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create controller: %w", err)
	}

	w := &waiter{
		svc:      s,
		loop:     loop,
		ctrl:     ctrl,
		step:     *step,
		terminal: terminal,
		prompt:   req.RetryPrompt,
		logger:   logger,
	}

	var g run.Group

	// Turn queue.
	g.Add(
		func() error {
			return loop.Run(runCtx)
		},
		func(_ error) {
			runCancel()
		},
	)

	// Activation.
	g.Add(
		func() error {
			return w.wait(runCtx)
		},
		func(_ error) {
			runCancel()
		},
	)

	err = g.Run()

	// The loop is stopped, nothing else runs on the turn queue.
	ctrl.Cancel()

	switch {
	case errors.Is(err, errDone):
	case ctx.Err() != nil:
		return nil, fmt.Errorf("activation interrupted: %w", ctx.Err())
	case err != nil:
		return nil, err
	}

	final, err := s.stepRepo.GetStep(ctx, step.ID)
	if err != nil {
		return nil, fmt.Errorf("could not get step: %w", err)
	}

	return &Response{
		Step:     *final,
		State:    w.state,
		Attempts: w.attempts,
	}, nil
}

// waiter follows the activation from outside the turn queue. Every controller
// call is posted to the loop.
type waiter struct {
	svc      *Service
	loop     *clock.Loop
	ctrl     *controller.Controller
	step     model.Step
	terminal <-chan model.ActivationState
	prompt   func(ctx context.Context, s model.ActivationState) bool
	logger   log.Logger

	state    model.ActivationState
	attempts []model.Attempt
}

func (w *waiter) wait(ctx context.Context) error {
	startedAt := w.loop.Now()
	err := w.post(ctx, func() error { return w.ctrl.Start(ctx, w.step) })
	if err != nil {
		return fmt.Errorf("could not start activation: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case st := <-w.terminal:
			w.state = st
			if err := w.record(ctx, st, startedAt); err != nil {
				return err
			}

			if st.Phase != model.PhaseError || w.prompt == nil || !w.prompt(ctx, st) {
				return errDone
			}

			w.logger.Infof("retrying activation")
			startedAt = w.loop.Now()
			err := w.post(ctx, w.ctrl.Retry)
			if err != nil {
				return fmt.Errorf("could not retry activation: %w", err)
			}
		}
	}
}

// record stores the attempt and writes the outcome back to the step status.
func (w *waiter) record(ctx context.Context, st model.ActivationState, startedAt time.Time) error {
	a := model.Attempt{
		ID:           ulid.Make().String(),
		StepID:       st.StepID,
		Phase:        st.Phase,
		Progress:     st.Progress,
		RetryCount:   st.RetryCount,
		ErrorMessage: st.ErrorMessage,
		StartedAt:    startedAt.UTC(),
		FinishedAt:   w.loop.Now().UTC(),
	}
	if err := w.svc.attemptRepo.CreateAttempt(ctx, a); err != nil {
		return fmt.Errorf("could not store attempt: %w", err)
	}
	w.attempts = append(w.attempts, a)

	var status model.StepStatus
	switch st.Phase {
	case model.PhaseSuccess:
		status = model.StepStatusCompleted
	case model.PhaseError:
		status = model.StepStatusFailed
	default:
		w.logger.Infof("activation ended in %q phase: %s", st.Phase, st.ErrorMessage)
		return nil
	}

	if err := w.svc.stepRepo.UpdateStepStatus(ctx, w.step.ID, status); err != nil {
		return fmt.Errorf("could not update step status: %w", err)
	}
	w.logger.Infof("activation ended in %q phase, step is %s", st.Phase, status)

	return nil
}

// post runs fn on the turn queue and waits for its result.
func (w *waiter) post(ctx context.Context, fn func() error) error {
	errC := make(chan error, 1)
	w.loop.Post(func() { errC <- fn() })

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errC:
		return err
	}
}

// terminalObserver forwards the terminal states to the waiter.
type terminalObserver struct {
	ctx context.Context
	ch  chan<- model.ActivationState
}

func (o terminalObserver) StateChanged(s model.ActivationState) {
	if !s.Phase.Terminal() {
		return
	}

	select {
	case o.ch <- s:
	case <-o.ctx.Done():
	}
}

func (terminalObserver) JustCompleted(string) {}
