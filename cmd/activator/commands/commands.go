package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/activator/internal/conventions"
	"github.com/slok/activator/internal/jobclient/rest"
	"github.com/slok/activator/internal/log"
	"github.com/slok/activator/internal/printer"
	"github.com/slok/activator/internal/storage/sqlite"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"

	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	DBPath     string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)
	app.Flag("db-path", "Path to the SQLite step registry.").Envar(conventions.EnvPrefix + "_DB_PATH").Default(conventions.DBPath(homedir.HomeDir())).StringVar(&c.DBPath)

	return c
}

// repositories are the step registry and attempt history sharing one database.
type repositories struct {
	steps    *sqlite.Repository
	attempts *sqlite.AttemptRepository
}

func (r repositories) Close() error { return r.steps.Close() }

func (c RootCommand) newRepositories(ctx context.Context) (*repositories, error) {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.DBPath,
		Logger: c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	attemptRepo, err := sqlite.NewAttemptRepository(sqlite.AttemptRepositoryConfig{
		DB:     repo.DB(),
		Logger: c.Logger,
	})
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("could not create attempt repository: %w", err)
	}

	return &repositories{steps: repo, attempts: attemptRepo}, nil
}

func (c RootCommand) newPrinter(format string) printer.Printer {
	if format == formatJSON {
		return printer.NewJSONPrinter(c.Stdout)
	}
	return printer.NewTablePrinter(c.Stdout)
}

// jobClientFlags are the flags of the commands that call the step actions.
type jobClientFlags struct {
	headers []string
	timeout time.Duration
}

func (f *jobClientFlags) register(cmd *kingpin.CmdClause) {
	cmd.Flag("header", "Header set on every action call, as 'Key: Value' (repeatable).").Short('H').StringsVar(&f.headers)
	cmd.Flag("call-timeout", "Max duration of a single action call.").Default("30s").DurationVar(&f.timeout)
}

func (f jobClientFlags) newClient(logger log.Logger) (*rest.Client, error) {
	headers, err := rest.ParseHeaders(f.headers)
	if err != nil {
		return nil, err
	}

	return rest.NewClient(rest.ClientConfig{
		Headers: headers,
		Timeout: f.timeout,
		Logger:  logger,
	})
}
