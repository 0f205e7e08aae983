package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/activator/internal/app/status"
)

type StatusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	stepID string
	format string
}

// NewStatusCommand returns the status command.
func NewStatusCommand(rootCmd *RootCommand, app *kingpin.Application) *StatusCommand {
	c := &StatusCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("status", "Get the detailed status of a step and its activation attempts.")
	c.Cmd.Arg("step-id", "Step ID.").Required().StringVar(&c.stepID)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c StatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c StatusCommand) Run(ctx context.Context) error {
	repos, err := c.rootCmd.newRepositories(ctx)
	if err != nil {
		return err
	}
	defer repos.Close()

	svc, err := status.NewService(status.ServiceConfig{
		StepRepository:    repos.steps,
		AttemptRepository: repos.attempts,
		Logger:            c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, status.Request{StepID: c.stepID})
	if err != nil {
		return fmt.Errorf("could not get step status: %w", err)
	}

	if err := c.rootCmd.newPrinter(c.format).PrintStatus(res.Step, res.Attempts); err != nil {
		return fmt.Errorf("could not print status: %w", err)
	}

	return nil
}
