package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dshills/smartcommits/internal/commitgen"
	"github.com/dshills/smartcommits/internal/gitctx"
	"github.com/dshills/smartcommits/internal/hook"
	"github.com/dshills/smartcommits/internal/logging"
	"github.com/dshills/smartcommits/internal/validate"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	flagHookFile string
	flagNoCache  bool
	flagDryRun   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [source]",
	Short: "Generate a commit message for the staged changes",
	Long: "Generate a commit message for the staged changes and print it. With --hook, " +
		"write it into git's commit message file instead; source is the commit source " +
		"git passes to prepare-commit-msg.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if flagHookFile != "" {
			source := ""
			if len(args) == 1 {
				source = args[0]
			}
			runHook(ctx, cmd, flagHookFile, source)
			return nil
		}

		res, ok := generate(ctx, cmd)
		if !ok {
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Generate a message and commit the staged changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			fail(cmd.ErrOrStderr(), err)
			return nil
		}
		res, ok := generateWith(ctx, cmd, s)
		if !ok {
			return nil
		}

		out := cmd.OutOrStdout()
		if flagDryRun {
			fmt.Fprintln(out, res.Message)
			return nil
		}
		if err := s.repo.Commit(ctx, res.Message); err != nil {
			fail(cmd.ErrOrStderr(), fmt.Errorf("committing: %w", err))
			return nil
		}
		fmt.Fprintf(out, "%s %s\n", color.New(color.FgGreen).Sprint("Committed:"), res.Message)
		return nil
	},
}

func generate(ctx context.Context, cmd *cobra.Command) (commitgen.Result, bool) {
	s, err := openSession(ctx)
	if err != nil {
		fail(cmd.ErrOrStderr(), err)
		return commitgen.Result{}, false
	}
	return generateWith(ctx, cmd, s)
}

func generateWith(ctx context.Context, cmd *cobra.Command, s *session) (commitgen.Result, bool) {
	g, err := s.generator(flagNoCache)
	if err != nil {
		fail(cmd.ErrOrStderr(), err)
		return commitgen.Result{}, false
	}
	res, err := g.Generate(ctx)
	if errors.Is(err, commitgen.ErrNoChanges) {
		fmt.Fprintln(cmd.ErrOrStderr(), "No staged changes. Stage files with git add first.")
		exitCode = ExitFailure
		return commitgen.Result{}, false
	}
	if err != nil {
		fail(cmd.ErrOrStderr(), err)
		return commitgen.Result{}, false
	}
	if res.Truncated {
		logging.Warn().Int("files", len(res.Files)).Msg("staged diff was truncated before generation")
	}
	return res, true
}

// runHook is the prepare-commit-msg path. Skips are silent; the hook
// script ignores failures so a commit is never blocked.
func runHook(ctx context.Context, cmd *cobra.Command, file, source string) {
	if hook.ShouldSkip(source) {
		logging.Debug().Str("source", source).Msg("hook skipped for commit source")
		return
	}
	s, err := openSession(ctx)
	if err != nil {
		fail(cmd.ErrOrStderr(), err)
		return
	}
	if gitctx.IsMerge(s.gitDir) {
		logging.Debug().Msg("hook skipped during merge")
		return
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		fail(cmd.ErrOrStderr(), err)
		return
	}
	msgPath, err := validate.FilePath(s.gitDir, abs)
	if err != nil {
		fail(cmd.ErrOrStderr(), err)
		return
	}

	g, err := s.generator(flagNoCache)
	if err != nil {
		fail(cmd.ErrOrStderr(), err)
		return
	}
	res, err := g.Generate(ctx)
	if errors.Is(err, commitgen.ErrNoChanges) {
		return
	}
	if err != nil {
		fail(cmd.ErrOrStderr(), err)
		return
	}
	if err := hook.WriteMessage(msgPath, res.Message); err != nil {
		fail(cmd.ErrOrStderr(), err)
		return
	}
	logging.Debug().Bool("cached", res.Cached).Msg("hook wrote commit message")
}

func init() {
	generateCmd.Flags().StringVar(&flagHookFile, "hook", "", "Commit message file (prepare-commit-msg mode)")
	generateCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the message cache")
	commitCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the message cache")
	commitCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print the message without committing")
}
