package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daviddao/notionqueue/internal/display"
)

var readyLimit int

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "List Open tickets ready to start, best first",
	Long: `List in-scope Open tickets, fetched live from Notion. Unblocked
tickets come first, then by priority (P0 first, none counts as P4).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEngine(cmd.Context())
		if err != nil {
			return err
		}

		ready, err := e.ListReady(cmd.Context())
		if err != nil {
			return fmt.Errorf("list ready: %w", err)
		}
		if readyLimit > 0 && len(ready) > readyLimit {
			ready = ready[:readyLimit]
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), ready)
		}

		w := cmd.OutOrStdout()
		if len(ready) == 0 {
			fmt.Fprintln(w, "Nothing ready right now.")
			return nil
		}

		fmt.Fprintf(w, "Ready (%d):\n\n", len(ready))
		for _, t := range ready {
			fmt.Fprintf(w, "  %s\n", display.QueueLine(t.ID, t.Priority, t.Status, t.Title, t.BlockedBy))
		}
		return nil
	},
}

func init() {
	readyCmd.Flags().IntVarP(&readyLimit, "limit", "n", 20, "Maximum tickets to show (0 for all)")
	rootCmd.AddCommand(readyCmd)
}
