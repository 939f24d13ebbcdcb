package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joescharf/grt/internal/output"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects visible on the gerrit server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectsRun()
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

func projectsRun() error {
	client, current, err := clientOnly()
	if err != nil {
		return err
	}

	names, err := client.ListProjects(context.Background())
	if err != nil {
		return err
	}

	if len(names) == 0 {
		ui.Info("No projects visible on %s", client.Conn.HostUser)
		return nil
	}

	table := ui.Table([]string{"Project", ""})
	for _, name := range names {
		mark := ""
		if name == current {
			mark = output.Green("current")
		}
		table.Append([]string{output.Cyan(name), mark})
	}
	return table.Render()
}
