package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/activator/internal/app/activate"
	"github.com/slok/activator/internal/model"
	"github.com/slok/activator/internal/printer"
)

type ActivateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	stepID      string
	client      jobClientFlags
	timeout     time.Duration
	interactive bool
	noProgress  bool
	format      string
}

// NewActivateCommand returns the activate command.
func NewActivateCommand(rootCmd *RootCommand, app *kingpin.Application) *ActivateCommand {
	c := &ActivateCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("activate", "Activate a step and wait until it's ready.")
	c.Cmd.Arg("step-id", "Step ID.").Required().StringVar(&c.stepID)
	c.client.register(c.Cmd)
	c.Cmd.Flag("timeout", "Max duration of the whole activation, 0 waits forever.").Default("0s").DurationVar(&c.timeout)
	c.Cmd.Flag("interactive", "Ask to retry after a failed attempt.").Short('i').BoolVar(&c.interactive)
	c.Cmd.Flag("no-progress", "Disable the progress bar.").BoolVar(&c.noProgress)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c ActivateCommand) Name() string { return c.Cmd.FullCommand() }

func (c ActivateCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	client, err := c.client.newClient(logger)
	if err != nil {
		return fmt.Errorf("could not create job client: %w", err)
	}

	repos, err := c.rootCmd.newRepositories(ctx)
	if err != nil {
		return err
	}
	defer repos.Close()

	svc, err := activate.NewService(activate.ServiceConfig{
		StepRepository:    repos.steps,
		AttemptRepository: repos.attempts,
		Client:            client,
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	req := activate.Request{StepID: c.stepID}
	if !c.noProgress {
		req.Observer = printer.NewProgressBar(c.rootCmd.Stderr)
	}
	if c.interactive {
		req.RetryPrompt = newRetryPrompt(c.rootCmd.Stdin, c.rootCmd.Stderr)
	}

	res, err := svc.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("could not activate step: %w", err)
	}

	if err := c.rootCmd.newPrinter(c.format).PrintActivation(res.Step, res.State); err != nil {
		return fmt.Errorf("could not print activation: %w", err)
	}

	if res.State.Phase != model.PhaseSuccess {
		return fmt.Errorf("step %s activation ended in %s phase: %s", res.Step.ID, res.State.Phase, res.State.ErrorMessage)
	}

	return nil
}

// newRetryPrompt asks on out and reads the answer from in. Anything but yes
// declines, the same as a cancelled context.
func newRetryPrompt(in io.Reader, out io.Writer) func(ctx context.Context, s model.ActivationState) bool {
	r := bufio.NewReader(in)

	return func(ctx context.Context, s model.ActivationState) bool {
		fmt.Fprintf(out, "Activation of %s failed: %s\nRetry? [y/N] ", s.StepID, s.ErrorMessage)

		answer := make(chan string, 1)
		go func() {
			line, _ := r.ReadString('\n')
			answer <- line
		}()

		select {
		case <-ctx.Done():
			return false
		case line := <-answer:
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "y", "yes":
				return true
			}
			return false
		}
	}
}
