package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daviddao/notionqueue/internal/display"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch every ticket from Notion and rebuild the local queue",
	Long: `Fetch every ticket from the Notion data source, rebuild the queue
snapshot (.queue/state.json) and mirror all tickets into the local cache
(.queue/tickets.db). History recorded by earlier commands is kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEngine(cmd.Context())
		if err != nil {
			return err
		}

		if !quietFlag && !jsonOutput {
			fmt.Fprintln(cmd.OutOrStdout(), "Syncing tickets...")
		}

		_, result, err := e.SyncWithResult(cmd.Context())
		if err != nil {
			return fmt.Errorf("sync: %w", err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), result)
		}

		if !quietFlag {
			display.SuccessMsg(cmd.OutOrStdout(), "Synced %d tickets: %d queued, %d ready", result.Fetched, result.Queued, result.Ready)
			if result.CacheError != "" {
				display.ErrorMsg(cmd.ErrOrStderr(), "ticket cache not updated: %s", result.CacheError)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
