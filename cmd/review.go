package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/grt/internal/gerrit"
)

var (
	reviewMessage  string
	abandonMessage string
)

var reviewCmd = &cobra.Command{
	Use:   "review <change> <score>",
	Short: "Score a change's Code-Review label",
	Long: `Apply a Code-Review score to the current patchset of a change.

The change may be given as its number or change-id; the score is a signed
integer in the label's range, e.g.:

  grt review 4217 +2
  grt review 4217 -1 -m "needs a test"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return scoreRun(args[0], args[1], "Code-Review")
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <change> <score>",
	Short: "Score a change's Verified label",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return scoreRun(args[0], args[1], "Verified")
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <change>",
	Short: "Submit a change for merging",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return actionRun(args[0], "submit", func(ctx context.Context, c gerrit.Client, project, rev string) error {
			return c.Submit(ctx, project, rev)
		})
	},
}

var abandonCmd = &cobra.Command{
	Use:   "abandon <change>",
	Short: "Abandon a change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return actionRun(args[0], "abandon", func(ctx context.Context, c gerrit.Client, project, rev string) error {
			return c.Abandon(ctx, project, rev, abandonMessage)
		})
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish <change>",
	Short: "Publish a draft change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return actionRun(args[0], "publish", func(ctx context.Context, c gerrit.Client, project, rev string) error {
			return c.Publish(ctx, project, rev)
		})
	},
}

var reviewersCmd = &cobra.Command{
	Use:   "reviewers <change> <reviewer>...",
	Short: "Add reviewers to a change",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewersRun(args[0], args[1:])
	},
}

func init() {
	reviewCmd.Flags().StringVarP(&reviewMessage, "message", "m", "", "Cover message posted with the score")
	verifyCmd.Flags().StringVarP(&reviewMessage, "message", "m", "", "Cover message posted with the score")
	abandonCmd.Flags().StringVarP(&abandonMessage, "message", "m", "", "Reason for abandoning")

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(abandonCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(reviewersCmd)
}

// resolveChange queries one change by number or change-id and returns its
// parsed record, which carries the current patchset revision that review
// commands target.
func resolveChange(ctx context.Context, client gerrit.Client, project, arg string) (*gerrit.Review, error) {
	raw, err := client.Query(ctx, project, "change:"+arg, "")
	if err != nil {
		return nil, err
	}
	reviews := gerrit.ParseReviews(bytes.NewReader(raw))
	if len(reviews) == 0 {
		return nil, fmt.Errorf("no change %s in project %s", arg, project)
	}
	return &reviews[0], nil
}

func parseScore(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, fmt.Errorf("invalid score %q (expected e.g. +2, 0, -1)", s)
	}
	return n, nil
}

func scoreRun(change, scoreArg, label string) error {
	score, err := parseScore(scoreArg)
	if err != nil {
		return err
	}

	client, project, err := connection()
	if err != nil {
		return err
	}

	ctx := context.Background()
	rev, err := resolveChange(ctx, client, project, change)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would score %s %+d on change %d (%s)", label, score, int(rev.Number), rev.Subject)
		return nil
	}

	in := gerrit.ReviewInput{Message: reviewMessage}
	switch label {
	case "Verified":
		in.Verified = &score
	default:
		in.CodeReview = &score
	}
	if err := client.Review(ctx, project, rev.CurrentPatchSet.Revision, in); err != nil {
		return err
	}

	ui.Success("%s %+d on change %d: %s", label, score, int(rev.Number), rev.Subject)
	return nil
}

// actionRun resolves the change and applies one revision-targeted command.
func actionRun(change, verb string, fn func(ctx context.Context, c gerrit.Client, project, rev string) error) error {
	client, project, err := connection()
	if err != nil {
		return err
	}

	ctx := context.Background()
	rev, err := resolveChange(ctx, client, project, change)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would %s change %d (%s)", verb, int(rev.Number), rev.Subject)
		return nil
	}

	if err := fn(ctx, client, project, rev.CurrentPatchSet.Revision); err != nil {
		return err
	}

	ui.Success("%s: change %d: %s", verb, int(rev.Number), rev.Subject)
	return nil
}

func reviewersRun(change string, who []string) error {
	client, project, err := connection()
	if err != nil {
		return err
	}

	ctx := context.Background()
	rev, err := resolveChange(ctx, client, project, change)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would add %s to change %d", strings.Join(who, ", "), int(rev.Number))
		return nil
	}

	if err := client.SetReviewers(ctx, project, rev.ID, who); err != nil {
		return err
	}

	ui.Success("Added %s to change %d", strings.Join(who, ", "), int(rev.Number))
	return nil
}
