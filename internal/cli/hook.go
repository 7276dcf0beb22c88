package cli

import (
	"errors"
	"fmt"

	"github.com/dshills/smartcommits/internal/hook"
	"github.com/spf13/cobra"
)

var (
	flagHookForce bool
	flagHookBin   string
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the prepare-commit-msg hook in this repository",
	Long: "Install the smartcommits section into .git/hooks/prepare-commit-msg. " +
		"An existing hook keeps its other content; --force replaces the file.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := gitDir(cmd.Context())
		if err != nil {
			fail(cmd.ErrOrStderr(), err)
			return nil
		}
		path, err := hook.Install(dir, flagHookBin, flagHookForce)
		if err != nil {
			fail(cmd.ErrOrStderr(), err)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Installed smartcommits %s hook at %s\n", hook.Name, path)
		return nil
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the prepare-commit-msg hook section",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := gitDir(cmd.Context())
		if err != nil {
			fail(cmd.ErrOrStderr(), err)
			return nil
		}
		deleted, err := hook.Uninstall(dir)
		if errors.Is(err, hook.ErrNotInstalled) {
			fmt.Fprintln(cmd.OutOrStdout(), "No smartcommits hook found.")
			return nil
		}
		if err != nil {
			fail(cmd.ErrOrStderr(), err)
			return nil
		}
		if deleted {
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s hook\n", hook.Name)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Removed smartcommits section from %s hook\n", hook.Name)
		}
		return nil
	},
}

func init() {
	installCmd.Flags().BoolVar(&flagHookForce, "force", false, "Replace an existing hook file")
	installCmd.Flags().StringVar(&flagHookBin, "bin", "smartcommits", "Command the hook runs")
}
