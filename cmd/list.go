package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/grt/internal/render"
	"github.com/joescharf/grt/internal/report"
)

var (
	listWidth  int
	listFormat string
)

var listCmd = &cobra.Command{
	Use:     "list [filter...]",
	Aliases: []string{"ls"},
	Short:   "List pending reviews for the project",
	Long: `List reviews matching a Gerrit query filter as a text table.

Without arguments the configured filter applies (default "status:open").
Arguments are passed through as query terms, e.g.:

  grt list owner:self
  grt list status:merged branch:master`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listRun(args)
	},
}

func init() {
	listCmd.Flags().IntVarP(&listWidth, "width", "w", 0, "Table width in columns (default: $COLUMNS or 110)")
	listCmd.Flags().StringVar(&listFormat, "format", "text", "Output format: text, json")
	rootCmd.AddCommand(listCmd)
}

func listRun(args []string) error {
	client, project, err := connection()
	if err != nil {
		return err
	}

	filter := strings.Join(args, " ")
	if filter == "" {
		filter = viper.GetString("filter")
	}

	rep, err := report.Generate(context.Background(), client, report.Options{
		Project: project,
		Filter:  filter,
		Extra:   viper.GetString("query_options"),
		Labels:  configuredLabels(),
		Render: render.Options{
			Width:    terminalWidth(listWidth),
			Title:    fmt.Sprintf("Reviews: %s", project),
			Colorize: !color.NoColor,
		},
	})
	if err != nil {
		return err
	}

	if listFormat == "json" {
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep.Reviews)
	}

	fmt.Fprint(ui.Out, rep.Text)
	return nil
}
