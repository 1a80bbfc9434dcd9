package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daviddao/notionqueue/internal/db"
	"github.com/daviddao/notionqueue/internal/display"
	"github.com/daviddao/notionqueue/internal/types"
)

type statsOutput struct {
	Tickets  int            `json:"tickets"`
	Status   map[string]int `json:"status"`
	Priority map[string]int `json:"priority"`
	Queued   int            `json:"queued"`
	History  int            `json:"history"`
	LastSync string         `json:"last_sync,omitempty"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show ticket statistics from the local cache (offline)",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		byStatus, err := c.CountByStatus()
		if err != nil {
			return fmt.Errorf("status counts: %w", err)
		}
		byPriority, err := c.CountByPriority()
		if err != nil {
			return fmt.Errorf("priority counts: %w", err)
		}
		st, err := store.Load()
		if err != nil {
			return err
		}

		out := statsOutput{
			Tickets:  c.TicketCount(),
			Status:   byStatus,
			Priority: byPriority,
			Queued:   len(st.Queue),
			History:  len(st.History),
			LastSync: c.LastSync(),
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), out)
		}

		w := cmd.OutOrStdout()
		display.Header(w, "Ticket Statistics")
		fmt.Fprintln(w)
		if out.LastSync == "" {
			fmt.Fprintln(w, "  Cache is empty. Run 'nq sync' first.")
			return nil
		}

		fmt.Fprintln(w, "  Status")
		for _, s := range types.ValidStatuses {
			fmt.Fprintf(w, "    %s %3d\n", display.StatusLabel(s), byStatus[s])
		}
		fmt.Fprintln(w)

		fmt.Fprintln(w, "  Priority")
		for _, p := range types.ValidPriorities {
			fmt.Fprintf(w, "    %s %s %3d\n", display.PriorityDot(p), display.PriorityLabel(p), byPriority[p])
		}
		fmt.Fprintln(w)

		fmt.Fprintf(w, "  Total: %d tickets, %d in the active queue, %d history entries\n",
			out.Tickets, out.Queued, out.History)
		fmt.Fprintf(w, "  %s\n", display.Dim.Render("last sync "+display.TimeAgo(out.LastSync, now())))
		return nil
	},
}

var (
	listCached bool
	listStatus string
	listArea   string
	listApp    string
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tickets, live or from the local cache",
	Long: `List every ticket in the data source regardless of status or scope.
With --cached the last sync's copy in .queue/tickets.db is read instead
of calling Notion.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var all []types.Ticket
		if listCached {
			c, err := openCache()
			if err != nil {
				return err
			}
			all, err = c.Tickets(db.Query{Status: listStatus, Area: listArea, App: listApp, Limit: listLimit})
			if err != nil {
				return fmt.Errorf("read cache: %w", err)
			}
		} else {
			e, err := getEngine(cmd.Context())
			if err != nil {
				return err
			}
			fetched, err := e.FetchAll(cmd.Context())
			if err != nil {
				return err
			}
			all = filterTickets(fetched)
		}

		if jsonOutput {
			if all == nil {
				all = []types.Ticket{}
			}
			return printJSON(cmd.OutOrStdout(), all)
		}

		w := cmd.OutOrStdout()
		if len(all) == 0 {
			fmt.Fprintln(w, "No tickets.")
			return nil
		}
		for _, t := range all {
			fmt.Fprintf(w, "  %s\n", display.QueueLine(t.ID, t.Priority, t.Status, t.Title, t.BlockedBy))
		}
		return nil
	},
}

// filterTickets applies the list flags to a live listing the way the
// cache query applies them.
func filterTickets(all []types.Ticket) []types.Ticket {
	var out []types.Ticket
	for _, t := range all {
		if listStatus != "" && t.Status != listStatus {
			continue
		}
		if listArea != "" && t.Area != listArea {
			continue
		}
		if listApp != "" && t.App != listApp {
			continue
		}
		out = append(out, t)
		if listLimit > 0 && len(out) == listLimit {
			break
		}
	}
	return out
}

func init() {
	listCmd.Flags().BoolVar(&listCached, "cached", false, "Read the local cache instead of Notion")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status")
	listCmd.Flags().StringVar(&listArea, "area", "", "Filter by area")
	listCmd.Flags().StringVar(&listApp, "app", "", "Filter by app")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Maximum tickets to show")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(listCmd)
}
