package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daviddao/notionqueue/internal/display"
	"github.com/daviddao/notionqueue/internal/git"
	"github.com/daviddao/notionqueue/internal/types"
)

var startBranch bool

var startCmd = &cobra.Command{
	Use:   "start TICKET_ID",
	Short: "Move a ticket to In Progress, optionally on a new git branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := getEngine(ctx)
		if err != nil {
			return err
		}

		t, err := e.SetStatus(ctx, args[0], types.StatusInProgress)
		if err != nil {
			return err
		}

		if startBranch {
			name := git.BranchName(t.Title)
			if err := (git.Repo{}).CreateBranch(ctx, name); err != nil {
				return err
			}
			if t, err = e.SetBranch(ctx, t.ID, name); err != nil {
				return err
			}
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), t)
		}
		display.SuccessMsg(cmd.OutOrStdout(), "Started %s", t.Title)
		if t.Branch != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  branch %s\n", display.Dim.Render(t.Branch))
		}
		return nil
	},
}

var doneCmd = &cobra.Command{
	Use:   "done TICKET_ID [TICKET_ID...]",
	Short: "Mark tickets as Done",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEngine(cmd.Context())
		if err != nil {
			return err
		}
		failed := 0
		for _, id := range args {
			t, err := e.SetStatus(cmd.Context(), id, types.StatusDone)
			if err != nil {
				display.ErrorMsg(cmd.ErrOrStderr(), "done %s: %v", id, err)
				failed++
				continue
			}
			if !quietFlag {
				display.SuccessMsg(cmd.OutOrStdout(), "Done: %s", t.Title)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d tickets not updated", failed, len(args))
		}
		return nil
	},
}

var branchCmd = &cobra.Command{
	Use:   "branch TICKET_ID [NAME]",
	Short: "Record the working branch (default: current git branch)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := ""
		if len(args) == 2 {
			name = args[1]
		} else {
			current, err := (git.Repo{}).CurrentBranch(ctx)
			if err != nil {
				return err
			}
			name = current
		}

		e, err := getEngine(ctx)
		if err != nil {
			return err
		}
		t, err := e.SetBranch(ctx, args[0], name)
		if err != nil {
			return err
		}
		return annotated(cmd, t, "branch", name)
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit TICKET_ID [SHA]",
	Short: "Record the resolving commit (default: HEAD)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sha := ""
		if len(args) == 2 {
			sha = args[1]
		} else {
			head, err := (git.Repo{}).HeadCommit(ctx)
			if err != nil {
				return err
			}
			sha = head
		}

		e, err := getEngine(ctx)
		if err != nil {
			return err
		}
		t, err := e.SetCommit(ctx, args[0], sha)
		if err != nil {
			return err
		}
		return annotated(cmd, t, "commit", sha)
	},
}

var featureCmd = &cobra.Command{
	Use:   "feature TICKET_ID TEXT",
	Short: "Record the feature a ticket belongs to",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := getEngine(cmd.Context())
		if err != nil {
			return err
		}
		t, err := e.SetFeature(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return annotated(cmd, t, "feature", args[1])
	},
}

func annotated(cmd *cobra.Command, t types.Ticket, field, value string) error {
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), t)
	}
	if !quietFlag {
		display.SuccessMsg(cmd.OutOrStdout(), "%s: %s = %s", t.Title, field, value)
	}
	return nil
}

func init() {
	startCmd.Flags().BoolVar(&startBranch, "branch", false, "Create and record a ticket/<slug> git branch")
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(featureCmd)
}
