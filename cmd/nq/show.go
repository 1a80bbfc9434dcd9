package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daviddao/notionqueue/internal/display"
	"github.com/daviddao/notionqueue/internal/types"
)

var showNoBody bool

var showCmd = &cobra.Command{
	Use:   "show TICKET_ID",
	Short: "Display a ticket with its fields and page body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEngine(cmd.Context())
		if err != nil {
			return err
		}

		details, err := e.FetchDetails(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if showNoBody {
			details.Description = ""
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), details)
		}

		printDetails(cmd.OutOrStdout(), details)
		return nil
	},
}

func printDetails(w io.Writer, d *types.Details) {
	t := d.Ticket
	fmt.Fprintf(w, "%s %s\n", display.PriorityDot(t.Priority), display.Bold.Render(t.Title))
	fmt.Fprintf(w, "  %s\n\n", display.Dim.Render(t.ID))

	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(w, "  %-11s %s\n", name, value)
		}
	}
	field("Status", display.StatusLabel(t.Status))
	field("Priority", display.PriorityLabel(t.Priority))
	field("Area", t.Area)
	field("App", t.App)
	field("Type", t.Type)
	field("Summary", t.Summary)
	field("Blocked by", strings.Join(t.BlockedBy, ", "))
	field("Blocks", strings.Join(t.Blocks, ", "))
	field("Branch", t.Branch)
	field("Commit", t.Commit)
	field("Feature", t.Feature)
	field("Link", t.Link)
	field("Resolved", t.ResolvedAt)
	field("Updated", display.TimeAgo(t.LastEditedTime, now()))
	if !t.Eligible {
		field("Eligible", display.Dim.Render("no (not assigned to the agent)"))
	}

	if d.Description != "" {
		fmt.Fprintln(w)
		display.Body(w, d.Description, 0)
	}
}

func init() {
	showCmd.Flags().BoolVar(&showNoBody, "no-body", false, "Skip the page body")
	rootCmd.AddCommand(showCmd)
}
