package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/grt/internal/gerrit"
	"github.com/joescharf/grt/internal/git"
	"github.com/joescharf/grt/internal/output"
	"github.com/joescharf/grt/internal/render"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool
	dryRun  bool

	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "grt",
	Short: "Gerrit review tool - list and act on pending code reviews",
	Long: `grt talks to a Gerrit server over its SSH command interface.
It renders the open reviews of a project as a width-aware table and
issues review actions (score, submit, abandon, publish, push-for-review).

Connection settings come from the config file or are derived from the
repo's gerrit ssh remote when run inside a checkout.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return listRun(nil)
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/grt/config.yaml)")
	rootCmd.PersistentFlags().StringP("project", "p", "", "Gerrit project (default: derived from the git remote)")
	rootCmd.PersistentFlags().String("remote", "", "Git remote pointing at gerrit (default: origin)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "grt")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("GRT")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	viper.SetDefault("ssh.host", "")
	viper.SetDefault("ssh.port", gerrit.DefaultPort)
	viper.SetDefault("remote", "origin")
	viper.SetDefault("project", "")
	viper.SetDefault("filter", "status:open")
	viper.SetDefault("query_options", "")
	viper.SetDefault("width", 0)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun
}

// clientOnly resolves the SSH client and whatever project can be derived,
// for commands that do not require a project. Explicit flags and config
// win; inside a checkout, missing pieces come from the configured git
// remote's URL.
func clientOnly() (*gerrit.SSHClient, string, error) {
	conn := gerrit.ConnConfig{
		HostUser: viper.GetString("ssh.host"),
		Port:     viper.GetInt("ssh.port"),
	}
	project, _ := rootCmd.PersistentFlags().GetString("project")
	if project == "" {
		project = viper.GetString("project")
	}

	if conn.HostUser == "" || project == "" {
		if info := remoteInfo(); info != nil {
			if conn.HostUser == "" {
				conn = info.Conn
			}
			if project == "" {
				project = info.Project
			}
		}
	}

	if conn.HostUser == "" {
		return nil, "", gerrit.ErrNotConfigured
	}
	return gerrit.NewSSHClient(conn), project, nil
}

// connection is clientOnly plus the requirement that a project is known.
func connection() (*gerrit.SSHClient, string, error) {
	client, project, err := clientOnly()
	if err != nil {
		return nil, "", err
	}
	if project == "" {
		return nil, "", fmt.Errorf("no gerrit project configured (set project or use --project)")
	}
	return client, project, nil
}

// remoteName returns the git remote to use for gerrit operations.
func remoteName() string {
	if r, _ := rootCmd.PersistentFlags().GetString("remote"); r != "" {
		return r
	}
	return viper.GetString("remote")
}

// remoteInfo derives connection parameters from the configured git remote,
// or nil when not inside a checkout with a parseable gerrit remote.
func remoteInfo() *gerrit.RemoteInfo {
	gc := git.NewClient()
	url, err := gc.RemoteURL(".", remoteName())
	if err != nil {
		return nil
	}
	info, err := gerrit.ParseRemoteURL(url)
	if err != nil {
		ui.VerboseLog("remote %s is not a gerrit ssh remote: %v", remoteName(), err)
		return nil
	}
	return info
}

// labelConfig mirrors one entry of the `labels:` config list.
type labelConfig struct {
	Name     string `mapstructure:"name"`
	Short    string `mapstructure:"short"`
	Approved int    `mapstructure:"approved"`
	Rejected int    `mapstructure:"rejected"`
}

// configuredLabels returns the label set from config, in file order, or the
// standard Code-Review/Verified pair.
func configuredLabels() []render.Label {
	var cfg []labelConfig
	if err := viper.UnmarshalKey("labels", &cfg); err != nil || len(cfg) == 0 {
		return render.DefaultLabels()
	}
	labels := make([]render.Label, 0, len(cfg))
	for _, l := range cfg {
		labels = append(labels, render.Label{
			Name:     l.Name,
			Short:    l.Short,
			Approved: l.Approved,
			Rejected: l.Rejected,
		})
	}
	return labels
}

// terminalWidth picks the report width: explicit value, then $COLUMNS, then
// the configured default.
func terminalWidth(flagWidth int) int {
	if flagWidth > 0 {
		return flagWidth
	}
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if n, err := strconv.Atoi(cols); err == nil && n > 0 {
			return n
		}
	}
	if w := viper.GetInt("width"); w > 0 {
		return w
	}
	return render.DefaultWidth
}
