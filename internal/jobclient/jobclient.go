package jobclient

import (
	"context"

	"github.com/slok/activator/internal/model"
)

// CheckStatusCompleted is the only check status that means the job finished.
const CheckStatusCompleted = "completed"

// ActionResult is the result of the init, clean and finish actions.
type ActionResult struct {
	Success bool
	Message string
}

// CheckResult is the result of the check action.
type CheckResult struct {
	Status  string
	Success bool
	Message string
}

// Completed returns true if the job reported completion.
func (r CheckResult) Completed() bool { return r.Status == CheckStatusCompleted }

// Client calls the remote actions of a provisioning step. All the actions are
// idempotent from the client point of view.
type Client interface {
	// Clean removes the leftovers of a previous attempt.
	Clean(ctx context.Context, a model.Action) (*ActionResult, error)
	// Init starts the provisioning job.
	Init(ctx context.Context, a model.Action) (*ActionResult, error)
	// Check returns the provisioning job status.
	Check(ctx context.Context, a model.Action) (*CheckResult, error)
	// Finish disables the provisioned resources.
	Finish(ctx context.Context, a model.Action) (*ActionResult, error)
}
