package commands

import (
	"fmt"
	"os"

	"github.com/dyluth/libdoc2tb/internal/printer"
	"github.com/dyluth/libdoc2tb/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	forceInit bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new libdoc2tb project",
	Long: `Initialize a new libdoc2tb project in the current directory.

Creates:
  • libdoc2tb.yml - Project configuration with the built-in defaults
  • specs/README.md - Where to put libdoc JSON specs and how to generate them

Use --force to reinitialize an existing project (WARNING: replaces libdoc2tb.yml).`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Force reinitialization (replaces existing libdoc2tb.yml)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	created, err := scaffold.Initialize(dir, forceInit)
	if err != nil {
		return printer.Error("initialization failed", err.Error(), nil)
	}

	printer.Success("Initialized libdoc2tb project\n")
	for _, path := range created {
		printer.Info("  %s\n", path)
	}
	printer.Info("\nNext steps:\n")
	printer.Info("  1. Generate specs:  libdoc --format json Browser specs/Browser.json\n")
	printer.Info("  2. Export:          libdoc2tb export 'specs/*.json'\n")
	return nil
}
