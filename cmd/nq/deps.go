package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daviddao/notionqueue/internal/display"
)

var (
	depsBlockedBy []string
	depsBlocks    []string
)

var depsCmd = &cobra.Command{
	Use:   "deps TICKET_ID",
	Short: "Set a ticket's Blocked by and Blocks relations",
	Long: `Replace a ticket's dependency relations. A flag that is not given
leaves that relation alone; an empty value clears it.

Examples:
  nq deps abc --blocked-by def,ghi     # Set Blocked by, keep Blocks
  nq deps abc --blocks ""              # Clear Blocks`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var blockedBy, blocks *[]string
		if cmd.Flags().Changed("blocked-by") {
			ids := cleanIDs(depsBlockedBy)
			blockedBy = &ids
		}
		if cmd.Flags().Changed("blocks") {
			ids := cleanIDs(depsBlocks)
			blocks = &ids
		}

		e, err := getEngine(cmd.Context())
		if err != nil {
			return err
		}
		t, err := e.SetDependencies(cmd.Context(), args[0], blockedBy, blocks)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), t)
		}
		display.SuccessMsg(cmd.OutOrStdout(), "%s: blocked by [%s], blocks [%s]",
			t.Title, strings.Join(t.BlockedBy, ", "), strings.Join(t.Blocks, ", "))
		return nil
	},
}

// cleanIDs trims ids and drops empty entries.
func cleanIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

var assignCmd = &cobra.Command{
	Use:   "assign TICKET_ID NAME",
	Short: "Assign a ticket to a configured human",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEngine(cmd.Context())
		if err != nil {
			return err
		}
		t, err := e.SetAssignee(cmd.Context(), args[0], args[1])
		if err != nil {
			if names := cfg.AssigneeNames(); len(names) > 0 {
				return fmt.Errorf("%w (known: %s)", err, strings.Join(names, ", "))
			}
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), t)
		}
		display.SuccessMsg(cmd.OutOrStdout(), "%s assigned to %s", t.Title, args[1])
		return nil
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive TICKET_ID",
	Short: "Move a ticket to the Notion trash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEngine(cmd.Context())
		if err != nil {
			return err
		}
		if err := e.Archive(cmd.Context(), args[0]); err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{"id": args[0], "archived": true})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Archived: %s\n", display.Dim.Render("✗"), args[0])
		return nil
	},
}

func init() {
	depsCmd.Flags().StringSliceVar(&depsBlockedBy, "blocked-by", nil, "Ticket ids this ticket depends on (comma-separated)")
	depsCmd.Flags().StringSliceVar(&depsBlocks, "blocks", nil, "Ticket ids depending on this ticket (comma-separated)")
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(archiveCmd)
}
