package commands

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/libdoc2tb/internal/printer"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calcSpec = `{
  "name": "Calc",
  "doc": "Calculator keywords.",
  "type": "LIBRARY",
  "keywords": [{"name": "Run", "doc": "", "args": [{"name": "count", "types": ["int"], "required": true}]}]
}`

// TestRootCommand_ShowsHelpWhenNoSubcommand tests that the root command
// shows help instead of silently succeeding when invoked without a subcommand
func TestRootCommand_ShowsHelpWhenNoSubcommand(t *testing.T) {
	testRoot := &cobra.Command{
		Use:   "libdoc2tb",
		Short: "Test root command",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	buf := new(bytes.Buffer)
	testRoot.SetOut(buf)
	testRoot.SetErr(buf)

	err := testRoot.Execute()

	assert.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "Usage:", "Help should be displayed")
	assert.Contains(t, output, "libdoc2tb", "Help should show command name")
}

// TestRootCommand_RejectsUnknownFlags tests that unknown flags
// passed to the root command cause an error instead of being silently ignored
func TestRootCommand_RejectsUnknownFlags(t *testing.T) {
	testRoot := &cobra.Command{
		Use:   "libdoc2tb",
		Short: "Test root command",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		FParseErrWhitelist: cobra.FParseErrWhitelist{},
	}

	testRoot.SetArgs([]string{"--unknown-flag", "value"})

	buf := new(bytes.Buffer)
	testRoot.SetOut(buf)
	testRoot.SetErr(buf)

	err := testRoot.Execute()
	assert.Error(t, err, "Unknown flag should cause an error")
	assert.Contains(t, err.Error(), "unknown flag", "Error should mention unknown flag")
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"export", "init", "watch", "serve", "history"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestSetVersionInfo(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2025-01-01")
	assert.Equal(t, "1.2.3 (commit: abc123, built: 2025-01-01)", rootCmd.Version)
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()

	quiet := newLogger(false)
	assert.False(t, quiet.Enabled(ctx, slog.LevelInfo))
	assert.True(t, quiet.Enabled(ctx, slog.LevelWarn))

	loud := newLogger(true)
	assert.True(t, loud.Enabled(ctx, slog.LevelDebug))
}

func TestExportCommand(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	prevOut, prevErr, prevColor := printer.Stdout, printer.Stderr, color.NoColor
	printer.Stdout, printer.Stderr, color.NoColor = stdout, stderr, true
	t.Cleanup(func() {
		printer.Stdout, printer.Stderr, color.NoColor = prevOut, prevErr, prevColor
	})

	dir := t.TempDir()
	spec := filepath.Join(dir, "Calc.json")
	require.NoError(t, os.WriteFile(spec, []byte(calcSpec), 0644))
	output := filepath.Join(dir, "dump.xml")

	rootCmd.SetArgs([]string{"export", spec, "-o", output, "--repository", "demo"})
	require.NoError(t, rootCmd.Execute())

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(content), `repository="demo"`)
	assert.Contains(t, stdout.String(), "✓ Wrote "+output)
	assert.Contains(t, stdout.String(), "could not be resolved")

	// A second run without --force must not replace the dump
	rootCmd.SetArgs([]string{"export", spec, "-o", output})
	err = rootCmd.Execute()
	require.Error(t, err)
	assert.Equal(t, "output file already exists", err.Error())
	assert.Contains(t, stderr.String(), "--force")
}
