package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/activator/internal/model"
)

// JSONPrinter prints step information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// listItem represents a step in the list output (subset of fields).
type listItem struct {
	ID        string     `json:"id"`
	Title     string     `json:"title,omitempty"`
	Status    string     `json:"status"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type actionOutput struct {
	URL    string `json:"url"`
	Method string `json:"method,omitempty"`
}

type stepErrorOutput struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type attemptOutput struct {
	ID           string    `json:"id"`
	Phase        string    `json:"phase"`
	Progress     int       `json:"progress"`
	RetryCount   int       `json:"retry_count"`
	ErrorMessage string    `json:"error_message,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// statusOutput represents the full step status output.
type statusOutput struct {
	ID        string                  `json:"id"`
	Title     string                  `json:"title,omitempty"`
	Status    string                  `json:"status"`
	Actions   map[string]actionOutput `json:"actions"`
	Errors    []stepErrorOutput       `json:"errors,omitempty"`
	UpdatedAt *time.Time              `json:"updated_at"`
	Attempts  []attemptOutput         `json:"attempts"`
}

// activationOutput represents the result of an activation.
type activationOutput struct {
	StepID            string     `json:"step_id"`
	StepStatus        string     `json:"step_status"`
	Phase             string     `json:"phase"`
	Progress          int        `json:"progress"`
	PollingTier       int        `json:"polling_tier"`
	RetryCount        int        `json:"retry_count"`
	ErrorMessage      string     `json:"error_message,omitempty"`
	SlowTierStartedAt *time.Time `json:"slow_tier_started_at,omitempty"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintList prints steps in JSON format with a subset of fields.
func (j *JSONPrinter) PrintList(steps []model.Step) error {
	items := make([]listItem, len(steps))
	for i, s := range steps {
		items[i] = listItem{
			ID:        s.ID,
			Title:     s.Title,
			Status:    string(s.Status),
			UpdatedAt: utcOrNil(s.UpdatedAt),
		}
	}

	return j.encode(items)
}

// PrintStatus prints the detailed step status and its attempts in JSON format.
func (j *JSONPrinter) PrintStatus(step model.Step, attempts []model.Attempt) error {
	output := statusOutput{
		ID:        step.ID,
		Title:     step.Title,
		Status:    string(step.Status),
		Actions:   make(map[string]actionOutput, len(step.Actions)),
		UpdatedAt: utcOrNil(step.UpdatedAt),
		Attempts:  make([]attemptOutput, 0, len(attempts)),
	}

	for name, a := range step.Actions {
		output.Actions[string(name)] = actionOutput{URL: a.URL, Method: a.Method}
	}

	for _, e := range step.Errors {
		output.Errors = append(output.Errors, stepErrorOutput{Message: e.Message, Code: e.Code})
	}

	for _, a := range attempts {
		output.Attempts = append(output.Attempts, attemptOutput{
			ID:           a.ID,
			Phase:        string(a.Phase),
			Progress:     a.Progress,
			RetryCount:   a.RetryCount,
			ErrorMessage: a.ErrorMessage,
			StartedAt:    a.StartedAt.UTC(),
			FinishedAt:   a.FinishedAt.UTC(),
		})
	}

	return j.encode(output)
}

// PrintActivation prints the result of an activation in JSON format.
func (j *JSONPrinter) PrintActivation(step model.Step, state model.ActivationState) error {
	output := activationOutput{
		StepID:       step.ID,
		StepStatus:   string(step.Status),
		Phase:        string(state.Phase),
		Progress:     state.Progress,
		PollingTier:  state.PollingTier,
		RetryCount:   state.RetryCount,
		ErrorMessage: state.ErrorMessage,
	}

	if state.SlowTierStartedAt != nil {
		output.SlowTierStartedAt = utcOrNil(*state.SlowTierStartedAt)
	}

	return j.encode(output)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func utcOrNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}
