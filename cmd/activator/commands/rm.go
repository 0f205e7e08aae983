package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/activator/internal/app/remove"
	"github.com/slok/activator/internal/printer"
)

type RemoveCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	stepID string
	force  bool
}

// NewRemoveCommand returns the remove command.
func NewRemoveCommand(rootCmd *RootCommand, app *kingpin.Application) *RemoveCommand {
	c := &RemoveCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("rm", "Remove a step and its activation history from the registry.")
	c.Cmd.Arg("step-id", "Step ID.").Required().StringVar(&c.stepID)
	c.Cmd.Flag("force", "Force removal of a step in progress.").BoolVar(&c.force)

	return c
}

func (c RemoveCommand) Name() string { return c.Cmd.FullCommand() }

func (c RemoveCommand) Run(ctx context.Context) error {
	repos, err := c.rootCmd.newRepositories(ctx)
	if err != nil {
		return err
	}
	defer repos.Close()

	svc, err := remove.NewService(remove.ServiceConfig{
		Repository: repos.steps,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	step, err := svc.Run(ctx, remove.Request{StepID: c.stepID, Force: c.force})
	if err != nil {
		return fmt.Errorf("could not remove step: %w", err)
	}

	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Removed step: %s", step.ID)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
