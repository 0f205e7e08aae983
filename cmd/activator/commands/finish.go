package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/activator/internal/app/finish"
	"github.com/slok/activator/internal/printer"
)

type FinishCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	stepID string
	client jobClientFlags
}

// NewFinishCommand returns the finish command.
func NewFinishCommand(rootCmd *RootCommand, app *kingpin.Application) *FinishCommand {
	c := &FinishCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("finish", "Disable the resources provisioned by a step.")
	c.Cmd.Arg("step-id", "Step ID.").Required().StringVar(&c.stepID)
	c.client.register(c.Cmd)

	return c
}

func (c FinishCommand) Name() string { return c.Cmd.FullCommand() }

func (c FinishCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	client, err := c.client.newClient(logger)
	if err != nil {
		return fmt.Errorf("could not create job client: %w", err)
	}

	repos, err := c.rootCmd.newRepositories(ctx)
	if err != nil {
		return err
	}
	defer repos.Close()

	svc, err := finish.NewService(finish.ServiceConfig{
		Repository: repos.steps,
		Client:     client,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	step, err := svc.Run(ctx, finish.Request{StepID: c.stepID})
	if err != nil {
		return fmt.Errorf("could not finish step: %w", err)
	}

	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Finished step: %s", step.ID)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
