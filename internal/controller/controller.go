// Package controller drives the activation of a provisioning step.
//
// A Controller interprets a step descriptor and runs the clean, init and check
// remote actions until the job completes, fails or the step is blocked. While the
// job runs it estimates a progress value and backs off the polling cadence.
//
// The Controller is not safe for concurrent use. Every method must be called from
// the turn queue of the clock the controller was created with, the same queue
// where all its scheduled callbacks run.
package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/statekit"

	"github.com/slok/activator/internal/clock"
	"github.com/slok/activator/internal/jobclient"
	"github.com/slok/activator/internal/log"
	"github.com/slok/activator/internal/model"
	"github.com/slok/activator/internal/progress"
)

const (
	defaultBlockedMessage       = "step is blocked"
	defaultInitRejectedMessage  = "activation could not be initialized"
	defaultCheckRejectedMessage = "activation check failed"
)

// Observer is notified of the activation changes. It's called on the clock turn queue.
type Observer interface {
	// StateChanged is called with a copy of the state after every change.
	StateChanged(s model.ActivationState)
	// JustCompleted is called once per successful activation.
	JustCompleted(stepID string)
}

type noopObserver int

const noop = noopObserver(0)

func (noopObserver) StateChanged(model.ActivationState) {}
func (noopObserver) JustCompleted(string) {}

// Observers fans out the notifications to multiple observers.
type Observers []Observer

func (o Observers) StateChanged(s model.ActivationState) {
	for _, obs := range o {
		obs.StateChanged(s)
	}
}

func (o Observers) JustCompleted(stepID string) {
	for _, obs := range o {
		obs.JustCompleted(stepID)
	}
}

// Config is the controller configuration.
type Config struct {
	Clock    clock.Clock
	Client   jobclient.Client
	Observer Observer
	Progress progress.Config
	Logger   log.Logger
}

func (c *Config) defaults() error {
	if c.Clock == nil {
		return fmt.Errorf("clock is required")
	}

	if c.Client == nil {
		return fmt.Errorf("job client is required")
	}

	if c.Observer == nil {
		c.Observer = noop
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "controller.Controller"})

	return nil
}

type slot int

const (
	// slotNext holds the next step of the pipeline: a poll, the settle delay or a restart.
	slotNext slot = iota
	// slotAnimation holds the initialization animation ticker.
	slotAnimation
	slotCount
)

// Controller drives the activation of a single step.
type Controller struct {
	clock     clock.Clock
	client    jobclient.Client
	observer  Observer
	estimator *progress.Estimator
	interp    *statekit.Interpreter[machineContext]
	logger    log.Logger

	step     model.Step
	state    model.ActivationState
	slots    [slotCount]clock.Handle
	attempt  uint64
	started  bool
	closed   bool
	notified bool

	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc
}

// New returns a new controller.
func New(cfg Config) (*Controller, error) {
	err := cfg.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	est, err := progress.NewEstimator(cfg.Progress)
	if err != nil {
		return nil, fmt.Errorf("could not create progress estimator: %w", err)
	}

	interp, err := newMachine()
	if err != nil {
		return nil, err
	}

	return &Controller{
		clock:     cfg.Clock,
		client:    cfg.Client,
		observer:  cfg.Observer,
		estimator: est,
		interp:    interp,
		logger:    cfg.Logger,
		state:     model.ActivationState{Phase: model.PhaseIdle},
	}, nil
}

// Start starts the activation of the step. A controller can only be started once.
// The context bounds the remote calls of the activation.
func (c *Controller) Start(ctx context.Context, step model.Step) error {
	if c.closed {
		return fmt.Errorf("controller is cancelled: %w", model.ErrNotValid)
	}
	if c.started {
		return fmt.Errorf("controller already started: %w", model.ErrNotValid)
	}
	if err := step.Validate(); err != nil {
		return fmt.Errorf("invalid step: %w", err)
	}

	c.started = true
	c.step = step
	c.state = model.ActivationState{StepID: step.ID, Phase: model.PhaseIdle}
	c.parent = ctx
	c.ctx, c.cancel = context.WithCancel(ctx)

	c.evaluate()

	return nil
}

// Retry resets an errored or blocked activation and starts it again. The retry is
// counted so the next initialization cleans the previous attempt first.
func (c *Controller) Retry() error {
	if c.closed {
		return fmt.Errorf("controller is cancelled: %w", model.ErrNotValid)
	}
	if c.state.Phase != model.PhaseError && c.state.Phase != model.PhaseBlocked {
		return fmt.Errorf("can't retry an activation in %q phase: %w", c.state.Phase, model.ErrNotValid)
	}

	c.invalidate()
	c.ctx, c.cancel = context.WithCancel(c.parent)
	c.notified = false

	c.transition(eventReset, func(s *model.ActivationState) {
		*s = model.ActivationState{
			StepID:     c.step.ID,
			RetryCount: s.RetryCount + 1,
		}
	})
	c.after(slotNext, 0, c.evaluate)

	return nil
}

// Cancel tears down the controller. Pending callbacks never run and in flight
// remote calls are cancelled and ignored. Cancel is idempotent.
func (c *Controller) Cancel() {
	if c.closed {
		return
	}

	c.closed = true
	c.invalidate()
	c.interp.Stop()
	c.logger.Debugf("activation cancelled")
}

// State returns a copy of the current activation state.
func (c *Controller) State() model.ActivationState {
	return copyState(c.state)
}

func (c *Controller) evaluate() {
	switch c.step.Status {
	case model.StepStatusCompleted:
		c.succeed()
	case model.StepStatusBlocked:
		msg := defaultBlockedMessage
		if len(c.step.Errors) > 0 && c.step.Errors[0].Message != "" {
			msg = c.step.Errors[0].Message
		}
		c.transition(eventBlock, func(s *model.ActivationState) { s.ErrorMessage = msg })
	case model.StepStatusInProgress:
		c.transition(eventPoll, nil)
		c.check()
	default:
		c.transition(eventInitialize, func(s *model.ActivationState) { s.Progress = c.estimator.InitialProgress() })
		c.every(slotAnimation, c.estimator.AnimationInterval(), c.animate)
		c.initialize()
	}
}

func (c *Controller) animate() {
	if c.state.Phase != model.PhaseInitializing {
		return
	}

	p := c.estimator.Animate(c.state.Progress)
	if p == c.state.Progress {
		return
	}
	c.update(func(s *model.ActivationState) { s.Progress = p })
}

func (c *Controller) initialize() {
	clean, ok := c.step.Action(model.ActionClean)
	if !ok || (c.state.RetryCount == 0 && c.step.Status != model.StepStatusFailed) {
		c.runInit()
		return
	}

	var (
		res *jobclient.ActionResult
		err error
	)
	c.remote(func(ctx context.Context) {
		res, err = c.client.Clean(ctx, clean)
	}, func() {
		switch {
		case err != nil:
			c.logger.Warningf("clean failed, initializing anyway: %s", err)
		case res == nil || !res.Success:
			c.logger.Warningf("clean rejected, initializing anyway")
		}
		c.runInit()
	})
}

func (c *Controller) runInit() {
	action, ok := c.step.Action(model.ActionInit)
	if !ok {
		c.fail(missingAction(c.step.ID, model.ActionInit))
		return
	}

	var (
		res *jobclient.ActionResult
		err error
	)
	c.remote(func(ctx context.Context) {
		res, err = c.client.Init(ctx, action)
	}, func() {
		if err != nil {
			c.fail(err.Error())
			return
		}
		if res == nil || !res.Success {
			msg := defaultInitRejectedMessage
			if res != nil && res.Message != "" {
				msg = res.Message
			}
			c.fail(msg)
			return
		}

		c.transition(eventInitialized, nil)
		c.check()
	})
}

func (c *Controller) check() {
	action, ok := c.step.Action(model.ActionCheck)
	if !ok {
		c.fail(missingAction(c.step.ID, model.ActionCheck))
		return
	}

	var (
		res *jobclient.CheckResult
		err error
	)
	c.remote(func(ctx context.Context) {
		res, err = c.client.Check(ctx, action)
	}, func() {
		c.onCheck(res, err)
	})
}

func (c *Controller) onCheck(res *jobclient.CheckResult, err error) {
	if err != nil {
		c.fail(err.Error())
		return
	}
	if res == nil || !res.Success {
		msg := defaultCheckRejectedMessage
		if res != nil && res.Message != "" {
			msg = res.Message
		}
		c.fail(msg)
		return
	}

	if res.Completed() {
		c.after(slotNext, c.estimator.SettleDelay(), c.succeed)
		return
	}

	now := c.clock.Now()
	tier := progress.Tier(c.state.PollingTier)
	p := c.estimator.Advance(tier, c.state.Progress)

	var inSlowTier time.Duration
	if c.state.SlowTierStartedAt != nil {
		inSlowTier = now.Sub(*c.state.SlowTierStartedAt)
	}
	next, delay := c.estimator.Schedule(tier, p, inSlowTier)

	c.update(func(s *model.ActivationState) {
		s.Progress = p
		s.PollingTier = int(next)
		if next == progress.TierSlow && s.SlowTierStartedAt == nil {
			s.SlowTierStartedAt = &now
		}
	})
	c.after(slotNext, delay, c.check)
}

func (c *Controller) succeed() {
	c.cancelSlots()
	c.step.Status = model.StepStatusCompleted
	if !c.transition(eventComplete, func(s *model.ActivationState) { s.Progress = 100 }) {
		return
	}

	if !c.notified {
		c.notified = true
		c.observer.JustCompleted(c.step.ID)
	}
}

func (c *Controller) fail(msg string) {
	c.cancelSlots()
	c.step.Status = model.StepStatusFailed
	c.transition(eventFail, func(s *model.ActivationState) { s.ErrorMessage = msg })
}

// transition is the only place where the phase changes. It returns false if the
// machine rejected the event.
func (c *Controller) transition(event statekit.EventType, mutate func(s *model.ActivationState)) bool {
	from := c.state.Phase
	c.interp.Send(statekit.Event{Type: event})
	to := model.Phase(c.interp.State().Value)
	if to == from {
		c.logger.Errorf("event %q rejected in %q phase", event, from)
		return false
	}

	if from == model.PhaseInitializing {
		c.cancelSlot(slotAnimation)
	}

	if mutate != nil {
		mutate(&c.state)
	}
	c.state.Phase = to
	c.logger.Debugf("activation phase %q -> %q", from, to)
	c.observer.StateChanged(copyState(c.state))

	return true
}

// update changes the state without changing the phase.
func (c *Controller) update(mutate func(s *model.ActivationState)) {
	mutate(&c.state)
	c.observer.StateChanged(copyState(c.state))
}

// remote runs a remote call off the turn queue. done runs on the turn queue only if
// the attempt that made the call is still the current one.
func (c *Controller) remote(call func(ctx context.Context), done func()) {
	attempt := c.attempt
	ctx := c.ctx
	c.clock.Go(func() { call(ctx) }, func() {
		if c.stale(attempt) {
			c.logger.Debugf("ignoring remote call result of a stale attempt")
			return
		}
		done()
	})
}

func (c *Controller) after(s slot, d time.Duration, fn func()) {
	c.cancelSlot(s)
	attempt := c.attempt
	c.slots[s] = c.clock.After(d, func() {
		if c.stale(attempt) {
			return
		}
		c.slots[s] = 0
		fn()
	})
}

func (c *Controller) every(s slot, d time.Duration, fn func()) {
	c.cancelSlot(s)
	attempt := c.attempt
	c.slots[s] = c.clock.Every(d, func() {
		if c.stale(attempt) {
			return
		}
		fn()
	})
}

func (c *Controller) cancelSlot(s slot) {
	if c.slots[s] == 0 {
		return
	}
	c.clock.Cancel(c.slots[s])
	c.slots[s] = 0
}

func (c *Controller) cancelSlots() {
	for s := range slotCount {
		c.cancelSlot(s)
	}
}

// invalidate drops every pending callback and in flight call of the current attempt.
func (c *Controller) invalidate() {
	c.attempt++
	c.cancelSlots()
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Controller) stale(attempt uint64) bool {
	return c.closed || attempt != c.attempt
}

func missingAction(stepID string, name model.ActionName) string {
	return fmt.Errorf("step %q has no %q action: %w", stepID, name, model.ErrActionMissing).Error()
}

func copyState(s model.ActivationState) model.ActivationState {
	if s.SlowTierStartedAt != nil {
		t := *s.SlowTierStartedAt
		s.SlowTierStartedAt = &t
	}
	return s
}
