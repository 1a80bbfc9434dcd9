package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/daviddao/notionqueue/internal/types"
)

var primeFullMode bool

var primeCmd = &cobra.Command{
	Use:   "prime",
	Short: "Output AI-optimized workflow context",
	Long: `Output essential notionqueue workflow context in AI-optimized markdown.

Two modes:
- Default: brief workflow reminders plus the current snapshot
- --full:  complete command reference with examples

Reads only the local snapshot; run it at agent session start.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Load()
		if err != nil {
			return err
		}
		if primeFullMode {
			return outputFullContext(cmd.OutOrStdout(), st)
		}
		return outputBriefContext(cmd.OutOrStdout(), st)
	},
}

func init() {
	primeCmd.Flags().BoolVar(&primeFullMode, "full", false, "Output full workflow reference (for new agents)")
	rootCmd.AddCommand(primeCmd)
}

// snapshotBlock summarizes the snapshot, or says there is none.
func snapshotBlock(st *types.SyncState) string {
	if st.LastSynced == "" {
		return "\n## Current State\n- No snapshot yet: run `nq sync`\n"
	}
	block := fmt.Sprintf("\n## Current State\n- Last sync: %s\n- Active tickets: %d\n", st.LastSynced, len(st.Queue))
	if len(st.Queue) > 0 {
		next := st.Queue[0]
		priority := next.Priority
		if priority == "" {
			priority = types.PriorityLowest
		}
		block += fmt.Sprintf("- Next: %s %s (%s, %s)\n", next.ID, next.Title, priority, next.Status)
	}
	return block
}

// outputBriefContext outputs a concise reminder for agents that know nq.
func outputBriefContext(w io.Writer, st *types.SyncState) error {
	context := `# notionqueue (nq): Ticket Queue Active
` + snapshotBlock(st) + `
## Workflow
1. ` + "`nq sync`" + `: refresh the queue from Notion
2. ` + "`nq ready --json`" + `: Open tickets, best first
3. ` + "`nq show ID --json`" + `: read the ticket and its page body
4. ` + "`nq start ID --branch`" + `: In Progress on a ticket/<slug> branch
5. ` + "`nq commit ID`" + `: record HEAD on the ticket
6. ` + "`nq status ID \"In Review\"`" + ` or ` + "`nq done ID`" + `

## Rules
- All commands support ` + "`--json`" + `
- Priority P0 (urgent) to P4; unblocked tickets come first
- Never start a ticket whose Blocked by list is not empty

Run ` + "`nq prime --full`" + ` for the complete reference.
`
	_, err := fmt.Fprint(w, context)
	return err
}

// outputFullContext outputs the complete workflow reference.
func outputFullContext(w io.Writer, st *types.SyncState) error {
	snapshot, _ := json.MarshalIndent(map[string]any{
		"last_synced": st.LastSynced,
		"queued":      len(st.Queue),
		"history":     len(st.History),
	}, "", "  ")

	context := `# notionqueue (nq): Full Workflow Reference

Ticket queue for coding agents. Notion holds the tickets; nq keeps a local
snapshot of the active queue and a history of what the agent did.

## Current Snapshot
` + "```json" + `
` + string(snapshot) + `
` + "```" + `

## Picking work
` + "```bash" + `
nq sync                          # Rebuild .queue/state.json from Notion
nq ready --json                  # Open, in scope, assigned to the agent
nq queue                         # Whole active queue from the snapshot
nq show ID --json                # Fields plus rendered page body
` + "```" + `

## Doing work
` + "```bash" + `
nq start ID --branch             # In Progress + git branch ticket/<slug>
nq branch ID                     # Record the current branch
nq commit ID                     # Record HEAD (or pass a SHA)
nq feature ID "Exports"          # Group under a feature
nq status ID "In Review"         # Any status: ` + fmt.Sprint(types.ValidStatuses) + `
nq done ID                       # Done, stamps Resolved at
` + "```" + `

## Filing and linking
` + "```bash" + `
nq create "Title" --area Backend --priority P2 --body-file notes.md
nq deps ID --blocked-by OTHER    # Empty value clears a relation
nq assign ID alice               # Hand a ticket to a human
nq archive ID                    # Trash a duplicate
` + "```" + `

## Reporting
` + "```bash" + `
nq history --json                # created/started/done/status_change/archived
nq stats --json                  # Counts from the local cache
` + "```" + `
`
	_, err := fmt.Fprint(w, context)
	return err
}
