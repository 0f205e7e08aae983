package printer

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/slok/activator/internal/model"
)

// TablePrinter prints step information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintList prints steps in a table format.
func (t *TablePrinter) PrintList(steps []model.Step) error {
	if len(steps) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "ID\tSTATUS\tACTIONS\tUPDATED")

	// Print rows.
	for _, s := range steps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Status, actionNames(s), TimeAgo(s.UpdatedAt))
	}

	return nil
}

// PrintStatus prints the detailed step status and its attempts.
func (t *TablePrinter) PrintStatus(step model.Step, attempts []model.Attempt) error {
	fmt.Fprintf(t.writer, "ID:         %s\n", step.ID)
	if step.Title != "" {
		fmt.Fprintf(t.writer, "Title:      %s\n", step.Title)
	}
	fmt.Fprintf(t.writer, "Status:     %s\n", step.Status)
	fmt.Fprintf(t.writer, "Actions:    %s\n", actionNames(step))
	if !step.UpdatedAt.IsZero() {
		fmt.Fprintf(t.writer, "Updated:    %s\n", FormatTimestamp(step.UpdatedAt))
	}
	for _, e := range step.Errors {
		if e.Code != "" {
			fmt.Fprintf(t.writer, "Error:      %s (%s)\n", e.Message, e.Code)
		} else {
			fmt.Fprintf(t.writer, "Error:      %s\n", e.Message)
		}
	}

	if len(attempts) == 0 {
		return nil
	}

	fmt.Fprintln(t.writer)
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ATTEMPT\tPHASE\tPROGRESS\tRETRY\tDURATION\tFINISHED\tMESSAGE")
	for _, a := range attempts {
		fmt.Fprintf(tw, "%s\t%s\t%d%%\t%d\t%s\t%s\t%s\n",
			a.ID,
			a.Phase,
			a.Progress,
			a.RetryCount,
			FormatDuration(a.FinishedAt.Sub(a.StartedAt)),
			TimeAgo(a.FinishedAt),
			a.ErrorMessage,
		)
	}

	return nil
}

// PrintActivation prints the result of an activation.
func (t *TablePrinter) PrintActivation(step model.Step, state model.ActivationState) error {
	switch state.Phase {
	case model.PhaseSuccess:
		fmt.Fprintf(t.writer, "Step %s activated\n", step.ID)
	case model.PhaseBlocked:
		fmt.Fprintf(t.writer, "Step %s is blocked: %s\n", step.ID, state.ErrorMessage)
	case model.PhaseError:
		fmt.Fprintf(t.writer, "Step %s activation failed: %s\n", step.ID, state.ErrorMessage)
	default:
		fmt.Fprintf(t.writer, "Step %s activation stopped at %d%% (%s)\n", step.ID, state.Progress, state.Phase)
	}

	if state.RetryCount > 0 {
		fmt.Fprintf(t.writer, "Retries:    %d\n", state.RetryCount)
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func actionNames(s model.Step) string {
	if len(s.Actions) == 0 {
		return "-"
	}

	names := make([]string, 0, len(s.Actions))
	for name := range s.Actions {
		names = append(names, string(name))
	}
	slices.Sort(names)

	return strings.Join(names, ",")
}
