package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daviddao/notionqueue/internal/display"
	"github.com/daviddao/notionqueue/internal/types"
)

var (
	queueStatus  string
	queueLimit   int
	historyLimit int
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show the active queue from the last sync (offline)",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Load()
		if err != nil {
			return err
		}

		items := st.Queue
		if queueStatus != "" {
			filtered := make([]types.QueueItem, 0, len(items))
			for _, item := range items {
				if item.Status == queueStatus {
					filtered = append(filtered, item)
				}
			}
			items = filtered
		}
		if queueLimit > 0 && len(items) > queueLimit {
			items = items[:queueLimit]
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), items)
		}

		w := cmd.OutOrStdout()
		if st.LastSynced == "" {
			fmt.Fprintln(w, "No snapshot yet. Run 'nq sync' first.")
			return nil
		}
		if len(items) == 0 {
			fmt.Fprintln(w, "Queue clear.")
			return nil
		}

		fmt.Fprintf(w, "Queue (%d active, synced %s):\n\n", len(items),
			display.TimeAgo(st.LastSynced, now()))
		for _, item := range items {
			fmt.Fprintf(w, "  %s\n", display.QueueLine(item.ID, item.Priority, item.Status, item.Title, item.BlockedBy))
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded ticket actions (offline)",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Load()
		if err != nil {
			return err
		}

		entries := st.History
		if historyLimit > 0 && len(entries) > historyLimit {
			entries = entries[len(entries)-historyLimit:]
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), entries)
		}

		w := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(w, "No history recorded.")
			return nil
		}
		for _, h := range entries {
			fmt.Fprintf(w, "  %s  %-13s %s %s\n",
				display.Dim.Render(fmt.Sprintf("%-9s", display.TimeAgo(h.Timestamp, now()))),
				h.Action,
				display.Dim.Render(display.ShortID(h.TicketID)),
				h.Title,
			)
		}
		return nil
	},
}

func init() {
	queueCmd.Flags().StringVar(&queueStatus, "status", "", "Filter by status")
	queueCmd.Flags().IntVarP(&queueLimit, "limit", "n", 0, "Maximum items to show")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Show the most recent N entries (0 for all)")
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(historyCmd)
}
