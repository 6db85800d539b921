package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"depscope/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the resolution cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show resolution cache statistics",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached resolutions",
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func openCacheStore() (*cache.Store, error) {
	path := viper.GetString("cache.path")
	store, err := cache.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache at %s: %w", path, err)
	}
	return store, nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, err := openCacheStore()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, summaryTitleStyle.Render("Resolution cache"))
	fmt.Fprintf(out, "%s %s\n", summaryLabelStyle.Render("Path"), viper.GetString("cache.path"))
	fmt.Fprintf(out, "%s %d\n", summaryLabelStyle.Render("Entries"), stats.Entries)
	fmt.Fprintf(out, "%s %d bytes\n", summaryLabelStyle.Render("Payload"), stats.PayloadBytes)

	if len(stats.PerManager) > 0 {
		managers := make([]string, 0, len(stats.PerManager))
		for manager := range stats.PerManager {
			managers = append(managers, manager)
		}
		sort.Strings(managers)

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MANAGER\tENTRIES")
		for _, manager := range managers {
			fmt.Fprintf(w, "%s\t%d\n", manager, stats.PerManager[manager])
		}
		w.Flush()
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := openCacheStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Resolution cache cleared.")
	return nil
}
