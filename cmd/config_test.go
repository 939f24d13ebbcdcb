package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/grt/internal/gerrit"
	"github.com/joescharf/grt/internal/output"
	"github.com/joescharf/grt/internal/render"
)

// testEnv sets up isolated config dir, viper, and output for testing.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	// Override configDirFunc for tests
	origFunc := configDirFunc
	configDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { configDirFunc = origFunc })

	// Reset viper
	viper.Reset()
	viper.SetDefault("ssh.host", "")
	viper.SetDefault("ssh.port", gerrit.DefaultPort)
	viper.SetDefault("remote", "origin")
	viper.SetDefault("project", "")
	viper.SetDefault("filter", "status:open")
	viper.SetDefault("width", 0)

	// Initialize output
	ui = output.New()

	return dir
}

func TestConfigInit_CreatesFile(t *testing.T) {
	dir := testEnv(t)

	err := configInitRun()
	require.NoError(t, err)

	cfgPath := filepath.Join(dir, "config.yaml")
	_, err = os.Stat(cfgPath)
	assert.NoError(t, err, "config file should exist")

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "grt configuration")
	assert.Contains(t, string(data), "29418")
	assert.Contains(t, string(data), "Code-Review")
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	dir := testEnv(t)

	// Create existing file
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("existing"), 0644))

	configForce = false
	err := configInitRun()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, _ := os.ReadFile(cfgPath)
	assert.Equal(t, "existing", string(data))
}

func TestConfigInit_ForceOverwrites(t *testing.T) {
	dir := testEnv(t)

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("existing"), 0644))

	configForce = true
	t.Cleanup(func() { configForce = false })

	err := configInitRun()
	require.NoError(t, err)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "grt configuration")
}

func TestConfiguredLabels_Default(t *testing.T) {
	testEnv(t)

	labels := configuredLabels()
	require.Len(t, labels, 2)
	assert.Equal(t, "Code-Review", labels[0].Name)
	assert.Equal(t, "CR", labels[0].Short)
	assert.Equal(t, 2, labels[0].Approved)
	assert.Equal(t, -2, labels[0].Rejected)
	assert.Equal(t, "Verified", labels[1].Name)
}

func TestConfiguredLabels_FromConfig(t *testing.T) {
	testEnv(t)

	viper.Set("labels", []map[string]any{
		{"name": "Style", "short": "ST", "approved": 1, "rejected": -1},
	})

	labels := configuredLabels()
	require.Len(t, labels, 1)
	assert.Equal(t, render.Label{Name: "Style", Short: "ST", Approved: 1, Rejected: -1}, labels[0])
}

func TestTerminalWidth(t *testing.T) {
	testEnv(t)
	t.Setenv("COLUMNS", "")

	assert.Equal(t, 142, terminalWidth(142), "explicit width wins")

	t.Setenv("COLUMNS", "96")
	assert.Equal(t, 96, terminalWidth(0), "falls back to $COLUMNS")

	t.Setenv("COLUMNS", "")
	viper.Set("width", 120)
	assert.Equal(t, 120, terminalWidth(0), "then configured width")

	viper.Set("width", 0)
	assert.Equal(t, render.DefaultWidth, terminalWidth(0), "then the built-in default")
}

func TestDetectSource(t *testing.T) {
	testEnv(t)

	t.Setenv("GRT_FILTER", "owner:self")
	assert.Equal(t, "(env: GRT_FILTER)", detectSource("filter", "GRT_FILTER", nil))
	assert.Equal(t, "(file)", detectSource("remote", "GRT_REMOTE", map[string]bool{"remote": true}))
	assert.Equal(t, "(default)", detectSource("remote", "GRT_REMOTE", nil))
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"+2", 2, false},
		{"2", 2, false},
		{"0", 0, false},
		{"-1", -1, false},
		{"two", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseScore(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
