package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/activator/internal/app/stepimport"
	"github.com/slok/activator/internal/conventions"
	storageio "github.com/slok/activator/internal/storage/io"
	"github.com/slok/activator/internal/utils/env"
)

type ImportCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	file     string
	varSpecs []string
	format   string
}

// NewImportCommand returns the import command.
func NewImportCommand(rootCmd *RootCommand, app *kingpin.Application) *ImportCommand {
	c := &ImportCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("import", "Import the steps of a steps file into the registry.")
	c.Cmd.Flag("file", "Steps file path.").Short('f').Default(conventions.DefaultStepsFile).StringVar(&c.file)
	c.Cmd.Flag("var", "Steps file variable as KEY=VALUE, a bare KEY is taken from the environment (repeatable).").StringsVar(&c.varSpecs)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c ImportCommand) Name() string { return c.Cmd.FullCommand() }

func (c ImportCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	vars, err := env.ParseSpecs(c.varSpecs)
	if err != nil {
		return fmt.Errorf("invalid --var: %w", err)
	}

	path, err := filepath.Abs(c.file)
	if err != nil {
		return fmt.Errorf("could not resolve steps file path: %w", err)
	}
	dir, file := filepath.Split(path)

	repos, err := c.rootCmd.newRepositories(ctx)
	if err != nil {
		return err
	}
	defer repos.Close()

	svc, err := stepimport.NewService(stepimport.ServiceConfig{
		FileRepository: storageio.NewStepsYAMLRepository(os.DirFS(dir)),
		StepRepository: repos.steps,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	steps, err := svc.Run(ctx, stepimport.Request{Path: file, Vars: vars})
	if err != nil {
		return fmt.Errorf("could not import steps: %w", err)
	}

	if err := c.rootCmd.newPrinter(c.format).PrintList(steps); err != nil {
		return fmt.Errorf("could not print steps: %w", err)
	}

	return nil
}
