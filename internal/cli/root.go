package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/aireview/internal/config"
	"github.com/dshills/aireview/internal/github"
	"github.com/dshills/aireview/internal/gitctx"
	"github.com/dshills/aireview/internal/output"
	"github.com/dshills/aireview/internal/providers"
)

// version is overridden at build time with -ldflags "-X ...cli.version=".
var version = "dev"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

// app holds the process collaborators so tests can replace them.
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	// dir is the repository directory; empty means the working directory.
	dir     string
	newRepo func(backend, dir string) (gitctx.Repo, error)
	poster  output.CommentPoster
}

func defaultApp() *app {
	return &app{
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		newRepo: gitctx.New,
	}
}

// Run executes the command line and returns an exit code.
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return defaultApp().execute(ctx, os.Args[1:])
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	color.New(color.FgRed).Fprintf(a.stderr, "Error: %v\n", err)

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Errors cobra raises itself: unknown flags, wrong argument counts.
	return ExitUsageError
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "aireview",
		Short: "AI review of the current branch's diff",
		Long: "aireview diffs the current branch against its base, asks a language model " +
			"for concise review feedback and prints the reply.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().String("config", "", "Config file (default: user config dir)")
	a.addReviewFlags(root)
	root.RunE = runE(a.runReview)

	root.AddCommand(a.newConfigCmd())
	root.AddCommand(a.newVersionCmd())
	return root
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print aireview version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "aireview version %s\n", version)
		},
	}
}

// exitError carries the exit code chosen for a command failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// runE tags every error returned by fn with its exit code.
func runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &exitError{code: exitCode(err), err: err}
		}
		return nil
	}
}

func exitCode(err error) int {
	var (
		ee  *exitError
		cfg *config.ValidationError
	)
	switch {
	case errors.As(err, &ee):
		return ee.code
	case providers.IsCredentialError(err), errors.Is(err, github.ErrUnauthorized):
		return ExitAuthError
	case errors.As(err, &cfg), errors.Is(err, output.ErrGitHubTarget):
		return ExitUsageError
	default:
		return ExitRuntimeError
	}
}

// usageError marks err as a usage or configuration problem.
func usageError(err error) error {
	return &exitError{code: ExitUsageError, err: err}
}
