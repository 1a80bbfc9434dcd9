package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daviddao/notionqueue/internal/display"
)

var quickstartCmd = &cobra.Command{
	Use:   "quickstart",
	Short: "Quick start guide for nq",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		b := display.Bold.Render
		a := display.Success.Render
		d := display.Dim.Render

		fmt.Fprintf(w, "\n%s\n\n", b("nq: Notion Ticket Queue for Coding Agents"))

		fmt.Fprintln(w, b("SETUP"))
		fmt.Fprintf(w, "  %s         Create .queue/ with a config template\n", a("nq init"))
		fmt.Fprintf(w, "  %s\n", d("  Set NOTION_TOKEN, NOTION_DATABASE_ID and TARGET_APP (env, .env or .queue/config.yaml)"))
		fmt.Fprintf(w, "  %s\n\n", d("  Optional: AGENT_USER_ID limits the queue to tickets assigned to the agent"))

		fmt.Fprintln(w, b("DAILY LOOP"))
		fmt.Fprintf(w, "  %s         Refresh the queue\n", a("nq sync"))
		fmt.Fprintf(w, "  %s        What to pick up next\n", a("nq ready"))
		fmt.Fprintf(w, "  %s  Begin work\n", a("nq start ID --branch"))
		fmt.Fprintf(w, "  %s    Record HEAD\n", a("nq commit ID"))
		fmt.Fprintf(w, "  %s      Finish\n\n", a("nq done ID"))

		fmt.Fprintln(w, b("PRIORITIES"))
		fmt.Fprintf(w, "  %s urgent   %s high   %s normal   %s low   %s someday\n\n",
			display.PriorityLabel("P0"), display.PriorityLabel("P1"), display.PriorityLabel("P2"),
			display.PriorityLabel("P3"), display.PriorityLabel("P4"))

		fmt.Fprintf(w, "All commands support %s. Run %s for agent context.\n\n", a("--json"), a("nq prime"))
	},
}

func init() {
	rootCmd.AddCommand(quickstartCmd)
}
