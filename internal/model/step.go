package model

import (
	"fmt"
	"net/http"
	"time"
)

// StepStatus is the server reported status of a provisioning step.
type StepStatus string

const (
	StepStatusNotStarted StepStatus = "not_started"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusCompleted  StepStatus = "completed"
	StepStatusFailed     StepStatus = "failed"
	StepStatusBlocked    StepStatus = "blocked"
)

// Valid returns true if the status is one of the known step statuses.
func (s StepStatus) Valid() bool {
	switch s {
	case StepStatusNotStarted, StepStatusInProgress, StepStatusCompleted, StepStatusFailed, StepStatusBlocked:
		return true
	}
	return false
}

// ActionName is the name of a remote action exposed by a step.
type ActionName string

const (
	ActionInit   ActionName = "init"
	ActionClean  ActionName = "clean"
	ActionCheck  ActionName = "check"
	ActionFinish ActionName = "finish"
)

// Action is the invocation target of a remote action.
type Action struct {
	URL    string
	Method string
}

// StepError is an error reported by the server on a step descriptor.
type StepError struct {
	Message string
	Code    string
}

// Step is the descriptor of a provisioning step, as supplied by the step registry.
type Step struct {
	ID        string
	Title     string
	Status    StepStatus
	Actions   map[ActionName]Action
	Errors    []StepError
	UpdatedAt time.Time
}

// Action returns the remote action with the given name, if the step exposes it.
func (s Step) Action(name ActionName) (Action, bool) {
	a, ok := s.Actions[name]
	return a, ok
}

// HasAction returns true if the step exposes the action.
func (s Step) HasAction(name ActionName) bool {
	_, ok := s.Actions[name]
	return ok
}

// Validate validates the step descriptor.
func (s *Step) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}

	if !s.Status.Valid() {
		return fmt.Errorf("unknown status %q: %w", s.Status, ErrNotValid)
	}

	for name, a := range s.Actions {
		if a.URL == "" {
			return fmt.Errorf("action %q url is required: %w", name, ErrNotValid)
		}
		switch a.Method {
		case "", http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			return fmt.Errorf("action %q has unsupported method %q: %w", name, a.Method, ErrNotValid)
		}
	}

	return nil
}
