// Package progress estimates the progress shown while a step activation runs, and
// decides the polling cadence of the activation as time goes on.
//
// The estimator is pure: it never reads the clock. Callers pass the time spent in
// the slow tier so tests can drive it with simulated time.
package progress

import (
	"fmt"
	"time"
)

// Tier is a polling backoff tier.
type Tier int

const (
	// TierFast polls often while the job is likely to finish soon.
	TierFast Tier = 0
	// TierSlow polls less often once the fast tier progress cap has been reached.
	TierSlow Tier = 1
	// TierIdle polls rarely and freezes progress, the job is taking long.
	TierIdle Tier = 2
)

// Config holds the timings and progress thresholds of an activation.
// Zero values are replaced by the defaults.
type Config struct {
	// FastInterval is the delay between checks in the fast tier. Default 3s.
	FastInterval time.Duration
	// SlowInterval is the delay between checks in the slow tier. Default 5s.
	SlowInterval time.Duration
	// IdleInterval is the delay between checks in the idle tier. Default 7s.
	IdleInterval time.Duration
	// SlowTierWindow is the time spent in the slow tier before moving to the idle tier. Default 30s.
	SlowTierWindow time.Duration
	// SettleDelay is the pause between observing completion and declaring success. Default 1s.
	SettleDelay time.Duration
	// AnimationInterval is the cadence of the cosmetic initialization animation. Default 1s.
	AnimationInterval time.Duration

	// InitialProgress is the progress set when initialization starts. Default 10.
	InitialProgress int
	// AnimationCeiling is the max progress the initialization animation reaches. Default 30.
	AnimationCeiling int
	// AnimationStep is the progress added on every animation tick. Default 2.
	AnimationStep int
	// FastStep is the progress added on every fast tier check. Default 5.
	FastStep int
	// FastCap is the progress that moves polling to the slow tier. Default 90.
	FastCap int
	// SlowStep is the progress added on every slow tier check. Default 1.
	SlowStep int
	// SlowCap is the max progress before completion is confirmed. Default 96.
	SlowCap int
}

func (c *Config) defaults() error {
	setDuration := func(d *time.Duration, def time.Duration) {
		if *d == 0 {
			*d = def
		}
	}
	setInt := func(i *int, def int) {
		if *i == 0 {
			*i = def
		}
	}

	setDuration(&c.FastInterval, 3*time.Second)
	setDuration(&c.SlowInterval, 5*time.Second)
	setDuration(&c.IdleInterval, 7*time.Second)
	setDuration(&c.SlowTierWindow, 30*time.Second)
	setDuration(&c.SettleDelay, 1*time.Second)
	setDuration(&c.AnimationInterval, 1*time.Second)

	setInt(&c.InitialProgress, 10)
	setInt(&c.AnimationCeiling, 30)
	setInt(&c.AnimationStep, 2)
	setInt(&c.FastStep, 5)
	setInt(&c.FastCap, 90)
	setInt(&c.SlowStep, 1)
	setInt(&c.SlowCap, 96)

	for name, d := range map[string]time.Duration{
		"fast interval":      c.FastInterval,
		"slow interval":      c.SlowInterval,
		"idle interval":      c.IdleInterval,
		"slow tier window":   c.SlowTierWindow,
		"settle delay":       c.SettleDelay,
		"animation interval": c.AnimationInterval,
	} {
		if d < 0 {
			return fmt.Errorf("%s can't be negative", name)
		}
	}

	if c.InitialProgress < 0 || c.AnimationStep < 0 || c.FastStep < 0 || c.SlowStep < 0 {
		return fmt.Errorf("progress values can't be negative")
	}
	if c.InitialProgress > c.AnimationCeiling {
		return fmt.Errorf("initial progress (%d) can't be greater than animation ceiling (%d)", c.InitialProgress, c.AnimationCeiling)
	}
	if c.AnimationCeiling > c.FastCap {
		return fmt.Errorf("animation ceiling (%d) can't be greater than fast cap (%d)", c.AnimationCeiling, c.FastCap)
	}
	if c.FastCap > c.SlowCap {
		return fmt.Errorf("fast cap (%d) can't be greater than slow cap (%d)", c.FastCap, c.SlowCap)
	}
	if c.SlowCap >= 100 {
		return fmt.Errorf("slow cap (%d) must be lower than 100", c.SlowCap)
	}

	return nil
}

// Estimator maps the activation polling state to the next progress value and the
// next polling delay.
type Estimator struct {
	cfg Config
}

// NewEstimator returns a new estimator.
func NewEstimator(cfg Config) (*Estimator, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Estimator{cfg: cfg}, nil
}

// Config returns the configuration with the defaults applied.
func (e *Estimator) Config() Config { return e.cfg }

// InitialProgress is the progress set when initialization starts.
func (e *Estimator) InitialProgress() int { return e.cfg.InitialProgress }

// Animate returns the progress after one initialization animation tick.
func (e *Estimator) Animate(current int) int {
	if current >= e.cfg.AnimationCeiling {
		return current
	}
	return min(current+e.cfg.AnimationStep, e.cfg.AnimationCeiling)
}

// Advance returns the progress after a check that didn't report completion.
// Progress never decreases.
func (e *Estimator) Advance(tier Tier, current int) int {
	var next int
	switch tier {
	case TierFast:
		next = min(current+e.cfg.FastStep, e.cfg.FastCap)
	case TierSlow:
		next = min(current+e.cfg.SlowStep, e.cfg.SlowCap)
	default:
		next = current
	}

	return max(next, current)
}

// Schedule returns the tier and delay for the next check. current is the progress
// already advanced for this check, inSlowTier the time spent in the slow tier so far.
// Tiers only move forward.
func (e *Estimator) Schedule(tier Tier, current int, inSlowTier time.Duration) (Tier, time.Duration) {
	switch tier {
	case TierFast:
		if current >= e.cfg.FastCap {
			return TierSlow, e.cfg.SlowInterval
		}
		return TierFast, e.cfg.FastInterval
	case TierSlow:
		if inSlowTier >= e.cfg.SlowTierWindow {
			return TierIdle, e.cfg.IdleInterval
		}
		return TierSlow, e.cfg.SlowInterval
	default:
		return TierIdle, e.cfg.IdleInterval
	}
}

// SettleDelay is the pause between observing completion and declaring success.
func (e *Estimator) SettleDelay() time.Duration { return e.cfg.SettleDelay }

// AnimationInterval is the cadence of the initialization animation.
func (e *Estimator) AnimationInterval() time.Duration { return e.cfg.AnimationInterval }
