package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daviddao/notionqueue/internal/display"
	"github.com/daviddao/notionqueue/internal/types"
)

type statusOutput struct {
	LastSynced string               `json:"last_synced"`
	Queued     int                  `json:"queued"`
	ByStatus   map[string]int       `json:"by_status"`
	Next       []types.QueueItem    `json:"next"`
	Recent     []types.HistoryEntry `json:"recent"`
}

var statusCmd = &cobra.Command{
	Use:     "status [TICKET_ID STATUS]",
	Aliases: []string{"st"},
	Short:   "Show a queue overview, or set a ticket's status",
	Long: `Without arguments, show a snapshot overview: last sync, queue size by
status, the next tickets and recent history. Reads only local files.

With TICKET_ID and STATUS, move the ticket to that status. Done and
Review AI Fix also stamp the resolved date.

Statuses: ` + strings.Join(types.ValidStatuses, ", ") + `

Examples:
  nq status                         # Overview
  nq status abc123 "In Review"      # Set status
  nq st --json                      # Machine-readable overview`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("accepts no arguments or TICKET_ID STATUS, received %d", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 2 {
			return setStatus(cmd, args[0], args[1])
		}

		st, err := store.Load()
		if err != nil {
			return err
		}

		out := statusOutput{
			LastSynced: st.LastSynced,
			Queued:     len(st.Queue),
			ByStatus:   map[string]int{},
			Next:       st.Queue[:min(5, len(st.Queue))],
			Recent:     st.History[max(0, len(st.History)-5):],
		}
		for _, item := range st.Queue {
			out.ByStatus[item.Status]++
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), out)
		}

		w := cmd.OutOrStdout()
		display.Header(w, "Ticket Queue")
		if st.LastSynced == "" {
			fmt.Fprintln(w, "  Never synced. Run 'nq sync'.")
			return nil
		}
		fmt.Fprintf(w, "  Last sync  %s\n", display.Dim.Render(display.TimeAgo(st.LastSynced, now())))
		fmt.Fprintf(w, "  Active     %d\n", out.Queued)
		for _, s := range types.ValidStatuses {
			if n := out.ByStatus[s]; n > 0 {
				fmt.Fprintf(w, "    %s %3d\n", display.StatusLabel(s), n)
			}
		}

		if len(out.Next) > 0 {
			fmt.Fprintln(w)
			display.SubHeader(w, "  Next up")
			for _, item := range out.Next {
				fmt.Fprintf(w, "  %s\n", display.QueueLine(item.ID, item.Priority, item.Status, item.Title, item.BlockedBy))
			}
		}

		if len(out.Recent) > 0 {
			fmt.Fprintln(w)
			display.SubHeader(w, "  Recent")
			for _, h := range out.Recent {
				fmt.Fprintf(w, "  %-13s %s %s\n", h.Action, h.Title,
					display.Dim.Render(display.TimeAgo(h.Timestamp, now())))
			}
		}
		return nil
	},
}

func setStatus(cmd *cobra.Command, id, status string) error {
	status = canonicalStatus(status)
	e, err := getEngine(cmd.Context())
	if err != nil {
		return err
	}
	t, err := e.SetStatus(cmd.Context(), id, status)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), t)
	}
	display.SuccessMsg(cmd.OutOrStdout(), "%s → %s", t.Title, status)
	return nil
}

// canonicalStatus matches s against the known statuses ignoring case.
// Unknown values are returned unchanged so validation can report them.
func canonicalStatus(s string) string {
	for _, v := range types.ValidStatuses {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return v
		}
	}
	return s
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
