package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daviddao/notionqueue/internal/display"
)

const agentsMDSnippet = `## Ticket Queue

This project tracks work in Notion through **nq (notionqueue)**.
Run ` + "`nq prime`" + ` for workflow context.

**Quick reference:**
- ` + "`nq sync`" + ` - Refresh the queue from Notion
- ` + "`nq ready --json`" + ` - Tickets ready to start
- ` + "`nq show ID --json`" + ` - Read a ticket
- ` + "`nq start ID --branch`" + ` - Begin work on a new branch
- ` + "`nq done ID`" + ` - Finish a ticket

For full workflow details: ` + "`nq prime --full`"

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Display minimal snippet for AGENTS.md",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		b := display.Bold.Render
		a := display.Success.Render

		fmt.Fprintf(w, "\n%s\n\n", b("nq Onboarding"))
		fmt.Fprintln(w, "Add this snippet to AGENTS.md (or your agent instructions file):")
		fmt.Fprintln(w)
		fmt.Fprintln(w, display.Dim.Render("--- BEGIN AGENTS.MD CONTENT ---"))
		fmt.Fprintln(w, agentsMDSnippet)
		fmt.Fprintln(w, display.Dim.Render("--- END AGENTS.MD CONTENT ---"))
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s prints live queue context at session start.\n\n", a("nq prime"))
	},
}

func init() {
	rootCmd.AddCommand(onboardCmd)
}
