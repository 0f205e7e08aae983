package model

import (
	"time"
)

// Phase is the lifecycle phase of a step activation.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseInitializing Phase = "initializing"
	PhasePolling      Phase = "polling"
	PhaseSuccess      Phase = "success"
	PhaseError        Phase = "error"
	PhaseBlocked      Phase = "blocked"
)

// Terminal returns true when the activation can't advance without user action.
func (p Phase) Terminal() bool {
	return p == PhaseSuccess || p == PhaseError || p == PhaseBlocked
}

// ActivationState is the observable state of a step activation.
type ActivationState struct {
	StepID       string
	Phase        Phase
	Progress     int
	PollingTier  int
	RetryCount   int
	ErrorMessage string
	// SlowTierStartedAt is set once, when polling enters the slow tier.
	SlowTierStartedAt *time.Time
}

// Attempt is the recorded outcome of an activation that reached a terminal phase.
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
