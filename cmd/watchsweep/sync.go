package main

import (
	"context"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one synchronization pass and exit",
	Long: `Sync snapshots the configured collections, diffs against the last known
state, and removes newly added members from every account's watchlist.`,
	Example: `  watchsweep sync
  watchsweep sync --json`,
	RunE: runSyncOnce,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSyncOnce(cmd *cobra.Command, args []string) error {
	result, err := apiClient.Sync.Run(context.Background())
	if err != nil {
		if jsonOutput {
			printJSON(map[string]interface{}{
				"success": false,
				"error":   err.Error(),
			})
		} else {
			printError("Sync failed: %v", err)
		}
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success":  true,
			"current":  result.CurrentCount,
			"previous": result.PreviousCount,
			"removed":  result.RemovedCount,
			"duration": result.Duration,
		})
		return nil
	}

	printSuccess("Sync finished: %d tracked, %d previously known, %d removed (%s)",
		result.CurrentCount, result.PreviousCount, result.RemovedCount, result.Duration)
	return nil
}
