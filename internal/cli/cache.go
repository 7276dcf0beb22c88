package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dshills/smartcommits/internal/cache"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the commit message cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached commit messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(cmd)
		if err != nil {
			fail(cmd.ErrOrStderr(), err)
			return nil
		}
		n, err := c.Clear()
		if err != nil {
			fail(cmd.ErrOrStderr(), fmt.Errorf("clearing cache: %w", err))
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared (%d entries removed).\n", n)
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(cmd)
		if err != nil {
			fail(cmd.ErrOrStderr(), err)
			return nil
		}
		stats, err := c.GetStats()
		if err != nil {
			fail(cmd.ErrOrStderr(), fmt.Errorf("reading cache stats: %w", err))
			return nil
		}
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func openCache(cmd *cobra.Command) (*cache.Cache, error) {
	dir, err := gitDir(cmd.Context())
	if err != nil {
		return nil, err
	}
	c, err := cache.New(true, cache.Dir(dir), cache.DefaultTTL)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return c, nil
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheShowCmd)
}
