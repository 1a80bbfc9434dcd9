package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daviddao/notionqueue/internal/display"
	msync "github.com/daviddao/notionqueue/internal/sync"
	"github.com/daviddao/notionqueue/internal/types"
)

var (
	createArea     string
	createBody     string
	createBodyFile string
	createPriority string
	createAssignee string
	createType     string
)

var createCmd = &cobra.Command{
	Use:   "create TITLE",
	Short: "Create a ticket in the configured app",
	Long: `Create an Open ticket tagged with TARGET_APP.

Examples:
  nq create "Fix login redirect" --area Frontend --priority P1
  nq create "Export CSV" --area Backend --body-file notes.md --assignee alice`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := createBody
		if createBodyFile != "" {
			data, err := os.ReadFile(createBodyFile)
			if err != nil {
				return fmt.Errorf("read body: %w", err)
			}
			body = string(data)
		}

		e, err := getEngine(cmd.Context())
		if err != nil {
			return err
		}

		t, err := e.Create(cmd.Context(), msync.CreateInput{
			Title:    strings.Join(args, " "),
			Area:     createArea,
			Body:     body,
			Priority: createPriority,
			Assignee: createAssignee,
			Type:     createType,
		})
		if err != nil {
			if t.ID != "" {
				return fmt.Errorf("created %s but its body is incomplete: %w", t.ID, err)
			}
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), t)
		}
		display.SuccessMsg(cmd.OutOrStdout(), "Created %s %s", display.Dim.Render(t.ID), t.Title)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createArea, "area", "", "Area: "+strings.Join(types.ValidAreas, ", ")+" (required)")
	createCmd.Flags().StringVarP(&createBody, "body", "d", "", "Page body")
	createCmd.Flags().StringVar(&createBodyFile, "body-file", "", "Read the page body from a file")
	createCmd.Flags().StringVarP(&createPriority, "priority", "p", "", "Priority: P0-P4")
	createCmd.Flags().StringVar(&createAssignee, "assignee", "", "Assign to a configured human by name")
	createCmd.Flags().StringVarP(&createType, "type", "t", "", "Ticket type")
	createCmd.MarkFlagRequired("area")
	rootCmd.AddCommand(createCmd)
}
