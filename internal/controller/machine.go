package controller

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Machine states, they match the model.Phase values.
const (
	stateIdle         = "idle"
	stateInitializing = "initializing"
	statePolling      = "polling"
	stateSuccess      = "success"
	stateError        = "error"
	stateBlocked      = "blocked"
)

// Machine events.
const (
	eventComplete    = "COMPLETE"
	eventBlock       = "BLOCK"
	eventInitialize  = "INITIALIZE"
	eventPoll        = "POLL"
	eventInitialized = "INITIALIZED"
	eventFail        = "FAIL"
	eventReset       = "RESET"
)

// machineContext is empty, the activation state lives on the controller so it can be
// copied to observers without touching the interpreter.
type machineContext struct{}

func newMachine() (*statekit.Interpreter[machineContext], error) {
	machine, err := statekit.NewMachine[machineContext]("step-activation").
		WithInitial(stateIdle).
		WithContext(machineContext{}).
		// Idle: the descriptor status decides where to go.
		State(stateIdle).
		On(eventComplete).Target(stateSuccess).
		On(eventBlock).Target(stateBlocked).
		On(eventInitialize).Target(stateInitializing).
		On(eventPoll).Target(statePolling).Done().
		// Initializing: optional clean, then init.
		State(stateInitializing).
		On(eventInitialized).Target(statePolling).
		On(eventFail).Target(stateError).Done().
		// Polling: check until completed.
		State(statePolling).
		On(eventComplete).Target(stateSuccess).
		On(eventFail).Target(stateError).Done().
		// Terminal states, only a reset leaves them.
		State(stateSuccess).
		On(eventReset).Target(stateIdle).Done().
		State(stateError).
		On(eventReset).Target(stateIdle).Done().
		State(stateBlocked).
		On(eventReset).Target(stateIdle).Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("could not build activation machine: %w", err)
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()

	return interp, nil
}
