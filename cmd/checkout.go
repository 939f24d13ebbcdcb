package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/joescharf/grt/internal/git"
)

var checkoutCmd = &cobra.Command{
	Use:     "checkout <change>",
	Aliases: []string{"co"},
	Short:   "Fetch and check out a change's current patchset",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return fetchPatchsetRun(args[0], false)
	},
}

var cherryPickCmd = &cobra.Command{
	Use:   "cherry-pick <change>",
	Short: "Fetch a change's current patchset and cherry-pick it onto HEAD",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return fetchPatchsetRun(args[0], true)
	},
}

var browseCmd = &cobra.Command{
	Use:   "browse <change>",
	Short: "Open a change's review page in the browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return browseRun(args[0])
	},
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(cherryPickCmd)
	rootCmd.AddCommand(browseCmd)
}

// fetchPatchsetRun fetches the change's current patchset ref into
// FETCH_HEAD and then either checks it out or cherry-picks it.
func fetchPatchsetRun(change string, cherryPick bool) error {
	client, project, err := connection()
	if err != nil {
		return err
	}

	ctx := context.Background()
	rev, err := resolveChange(ctx, client, project, change)
	if err != nil {
		return err
	}
	ref := rev.CurrentPatchSet.Ref
	if ref == "" {
		return fmt.Errorf("change %d has no patchset ref", int(rev.Number))
	}

	verb := "checkout"
	if cherryPick {
		verb = "cherry-pick"
	}
	if dryRun {
		ui.DryRunMsg("Would fetch %s and %s FETCH_HEAD", ref, verb)
		return nil
	}

	gc := git.NewClient()
	ui.VerboseLog("git fetch %s %s", remoteName(), ref)
	if err := gc.Fetch(".", remoteName(), ref); err != nil {
		return err
	}

	if cherryPick {
		if err := gc.CherryPick(".", "FETCH_HEAD"); err != nil {
			return err
		}
	} else {
		if err := gc.Checkout(".", "FETCH_HEAD"); err != nil {
			return err
		}
	}

	ui.Success("%s patchset %d of change %d: %s", verb, int(rev.CurrentPatchSet.Number), int(rev.Number), rev.Subject)
	return nil
}

func browseRun(change string) error {
	client, project, err := connection()
	if err != nil {
		return err
	}

	rev, err := resolveChange(context.Background(), client, project, change)
	if err != nil {
		return err
	}
	if rev.URL == "" {
		return fmt.Errorf("change %d has no review URL", int(rev.Number))
	}

	if dryRun {
		ui.DryRunMsg("Would open %s", rev.URL)
		return nil
	}

	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	return exec.Command(opener, rev.URL).Start()
}
