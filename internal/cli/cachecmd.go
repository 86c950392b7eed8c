package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arbiterhq/arbiter/internal/adapters/repository"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset the evaluation cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the number of cached evaluations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cache, err := repository.New(cmd.Context(), cfg.CachePath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d cached evaluations\n", cfg.CachePath, cache.Size())
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached evaluation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cache, err := repository.New(cmd.Context(), cfg.CachePath)
		if err != nil {
			return err
		}
		n := cache.Size()
		cache.Clear()
		if err := cache.Save(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: cleared %d evaluations\n", cfg.CachePath, n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
