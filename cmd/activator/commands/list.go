package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/activator/internal/app/list"
	"github.com/slok/activator/internal/model"
)

type ListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	statusFilter string
	format       string
}

// NewListCommand returns the list command.
func NewListCommand(rootCmd *RootCommand, app *kingpin.Application) *ListCommand {
	c := &ListCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("list", "List all steps.")
	c.Cmd.Flag("status", "Filter by status (not_started, in_progress, completed, failed, blocked).").StringVar(&c.statusFilter)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c ListCommand) Name() string { return c.Cmd.FullCommand() }

func (c ListCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	var statusFilter *model.StepStatus
	if c.statusFilter != "" {
		status := model.StepStatus(strings.ToLower(c.statusFilter))
		statusFilter = &status
	}

	repos, err := c.rootCmd.newRepositories(ctx)
	if err != nil {
		return err
	}
	defer repos.Close()

	svc, err := list.NewService(list.ServiceConfig{
		Repository: repos.steps,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	steps, err := svc.Run(ctx, list.Request{StatusFilter: statusFilter})
	if err != nil {
		return fmt.Errorf("could not list steps: %w", err)
	}

	if err := c.rootCmd.newPrinter(c.format).PrintList(steps); err != nil {
		return fmt.Errorf("could not print list: %w", err)
	}

	return nil
}
