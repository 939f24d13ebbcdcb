package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joescharf/grt/internal/gerrit"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Work with draft changes",
}

var draftPushCmd = &cobra.Command{
	Use:   "push [branch]",
	Short: "Push HEAD as a draft (refs/drafts/<branch>)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return pushRun(args, "refs/drafts")
	},
}

var draftDeleteCmd = &cobra.Command{
	Use:   "delete <change>",
	Short: "Delete a draft change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return actionRun(args[0], "delete draft", func(ctx context.Context, c gerrit.Client, project, rev string) error {
			return c.DeleteDraft(ctx, project, rev)
		})
	},
}

func init() {
	draftCmd.AddCommand(draftPushCmd)
	draftCmd.AddCommand(draftDeleteCmd)
	rootCmd.AddCommand(draftCmd)
}
