package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/grt/internal/git"
)

var pushCmd = &cobra.Command{
	Use:   "push [branch]",
	Short: "Push HEAD for review",
	Long: `Push HEAD to the review queue of a target branch (refs/for/<branch>).

Without an argument the current branch name is used as the target.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return pushRun(args, "refs/for")
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
}

// pushRun pushes HEAD to <prefix>/<branch> on the gerrit remote. prefix is
// refs/for for regular uploads and refs/drafts for draft uploads.
func pushRun(args []string, prefix string) error {
	gc := git.NewClient()

	branch := ""
	if len(args) == 1 {
		branch = args[0]
	} else {
		b, err := gc.CurrentBranch(".")
		if err != nil {
			return fmt.Errorf("cannot determine target branch: %w", err)
		}
		branch = b
	}

	refspec := fmt.Sprintf("HEAD:%s/%s", prefix, branch)
	remote := remoteName()

	if dryRun {
		ui.DryRunMsg("Would run git push %s %s", remote, refspec)
		return nil
	}

	ui.VerboseLog("git push %s %s", remote, refspec)
	if err := gc.Push(".", remote, refspec); err != nil {
		return err
	}

	ui.Success("Pushed HEAD to %s/%s on %s", prefix, branch, remote)
	return nil
}
