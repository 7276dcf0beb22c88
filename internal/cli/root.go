package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dshills/smartcommits/internal/logging"
	"github.com/dshills/smartcommits/internal/providers"
	"github.com/dshills/smartcommits/internal/redact"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X ...cli.version=".
var version = "dev"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

var flagDebug bool

var rootCmd = &cobra.Command{
	Use:   "smartcommits",
	Short: "Conventional commit messages from staged changes",
	Long: "smartcommits reads the staged diff, asks an LLM provider (Groq, OpenRouter or Cohere) " +
		"for a conventional commit message, and writes it through git's prepare-commit-msg hook.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := logging.DefaultConfig()
		cfg.Output = cmd.ErrOrStderr()
		if flagDebug {
			cfg.Level = logging.DebugLevel
		}
		logging.Init(cfg)
	},
}

// Run executes the root command and returns an exit code.
func Run() int {
	return run(nil)
}

func run(args []string) int {
	exitCode = ExitSuccess
	if args != nil {
		rootCmd.SetArgs(args)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}
	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// authError marks failures caused by a missing or rejected API key.
type authError struct{ err error }

func (e *authError) Error() string { return e.err.Error() }
func (e *authError) Unwrap() error { return e.err }

// fail prints err and records the exit code it maps to. Command handlers
// return nil after calling it so cobra does not print usage.
func fail(w io.Writer, err error) {
	var ae *authError
	switch {
	case errors.As(err, &ae), providers.IsAuthError(err):
		exitCode = ExitAuthError
	default:
		exitCode = ExitRuntimeError
	}
	fmt.Fprintf(w, "Error: %s\n", redact.Message(err.Error()))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print smartcommits version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "smartcommits version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(
		versionCmd,
		installCmd,
		uninstallCmd,
		generateCmd,
		commitCmd,
		configCmd,
		modelsCmd,
		testCmd,
		cacheCmd,
		docsCmd,
		securityTestCmd,
	)
}
