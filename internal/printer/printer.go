package printer

import "github.com/slok/activator/internal/model"

// Printer knows how to print step information in different formats.
type Printer interface {
	PrintList(steps []model.Step) error
	PrintStatus(step model.Step, attempts []model.Attempt) error
	PrintActivation(step model.Step, state model.ActivationState) error
	PrintMessage(msg string) error
}

var (
	_ Printer = (*TablePrinter)(nil)
	_ Printer = (*JSONPrinter)(nil)
)
