package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/smartcommits/internal/config"
	"github.com/dshills/smartcommits/internal/providers"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const pingTimeout = 30 * time.Second

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List supported providers and their default models",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, p := range config.Providers {
			fmt.Fprintf(out, "%s:\n", p)
			fmt.Fprintf(out, "  default model: %s\n", config.DefaultModel(p))
			fmt.Fprintf(out, "  key variable:  %s\n\n", config.APIKeyEnv(p))
		}
	},
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Check that the configured provider accepts the API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			fail(cmd.ErrOrStderr(), err)
			return nil
		}
		cfg := s.loaded.Config
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Checking %s (%s)...\n", cfg.API.Provider, cfg.Model())

		p, err := s.provider()
		if err != nil {
			fail(cmd.ErrOrStderr(), err)
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), pingTimeout)
		defer cancel()

		_, err = p.Generate(ctx, providers.Request{
			SystemPrompt: "Respond with exactly: ok",
			UserPrompt:   "ping",
			MaxTokens:    10,
		})
		if err != nil {
			fmt.Fprintf(out, "%s ", color.New(color.FgRed).Sprint("FAIL"))
			fail(cmd.ErrOrStderr(), err)
			return nil
		}

		fmt.Fprintf(out, "%s %s is configured and responding\n", color.New(color.FgGreen).Sprint("OK:"), cfg.API.Provider)
		return nil
	},
}
