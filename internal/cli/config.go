package cli

import (
	"fmt"

	"github.com/dshills/smartcommits/internal/config"
	"github.com/dshills/smartcommits/internal/secerr"
	"github.com/dshills/smartcommits/internal/validate"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the repository configuration (" + config.FileName + ")",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := config.FindRoot("")
		if err != nil {
			fail(cmd.ErrOrStderr(), err)
			return nil
		}
		path, err := config.WriteDefault(root)
		if err != nil {
			if !path.IsZero() && path.Exists() {
				fmt.Fprintf(cmd.ErrOrStderr(), "Config file already exists at %s\n", path)
				return nil
			}
			fail(cmd.ErrOrStderr(), err)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Config file created at %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <section.key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := config.FindRoot("")
		if err != nil {
			fail(cmd.ErrOrStderr(), err)
			return nil
		}
		path, err := validate.FilePath(root, config.FileName)
		if err != nil {
			fail(cmd.ErrOrStderr(), err)
			return nil
		}
		if err := config.Set(path, args[0], args[1]); err != nil {
			if secerr.CategoryOf(err) == secerr.CategoryInvalidInput || secerr.CategoryOf(err) == secerr.CategoryConfigInvalid {
				return err
			}
			fail(cmd.ErrOrStderr(), err)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Loader{}.Load()
		if err != nil {
			fail(cmd.ErrOrStderr(), err)
			return nil
		}
		data, err := yaml.Marshal(loaded.Display())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# %s\n", loaded.ConfigPath)
		fmt.Fprint(out, string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
}
