package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dyluth/libdoc2tb/internal/config"
	"github.com/dyluth/libdoc2tb/internal/export"
	"github.com/dyluth/libdoc2tb/internal/ledger"
	"github.com/dyluth/libdoc2tb/internal/metrics"
	"github.com/dyluth/libdoc2tb/internal/printer"
	"github.com/dyluth/libdoc2tb/pkg/projectdump"
	"github.com/spf13/cobra"
)

var (
	exportOutput      string
	exportName        string
	exportLibVersion  string
	exportRepository  string
	exportForce       bool
	exportXML         bool
	exportAttach      bool
	exportMetricsFile string
	exportRedisURL    string
)

var exportCmd = &cobra.Command{
	Use:   "export <spec-or-glob>...",
	Short: "Convert libdoc specs into a TestBench project-dump",
	Long: `Convert one or more Robot Framework libdoc JSON specs into a TestBench
project-dump.

Inputs are processed in the order given; glob patterns (including **) expand
in lexical order. Libraries are placed before resources.

The dump is written as a zip archive holding project-dump.xml unless the
output ends in .xml or --xml is given. An existing output file is only
replaced with --force.

Examples:
  # Convert every spec in a directory
  libdoc2tb export 'specs/*.json' -o project-dump.zip

  # Rename a single library and record its version
  libdoc2tb export Browser.json --name Browser --lib-version 17.5.2

  # Write bare XML and keep a history of the run
  libdoc2tb export 'specs/**/*.json' --xml -o dump.xml --redis-url redis://localhost:6379`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default from config: project-dump.zip)")
	exportCmd.Flags().StringVar(&exportName, "name", "", "Override the library name (single input only)")
	exportCmd.Flags().StringVar(&exportLibVersion, "lib-version", "", "Override the library version (single input only)")
	exportCmd.Flags().StringVar(&exportRepository, "repository", "", "Repository id written into the dump and external ids")
	exportCmd.Flags().BoolVar(&exportForce, "force", false, "Overwrite an existing output file")
	exportCmd.Flags().BoolVar(&exportXML, "xml", false, "Write bare XML instead of a zip archive")
	exportCmd.Flags().BoolVar(&exportAttach, "attach-resources", false, "Attach resource source files to their interactions")
	exportCmd.Flags().StringVar(&exportMetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the export")
	exportCmd.Flags().StringVar(&exportRedisURL, "redis-url", "", "Record the run in the export history at this Redis URL")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyExportFlags(cmd, cfg); err != nil {
		return err
	}

	exporter, closeFn, err := newExporter(ctx, cfg, exportMetricsFile, exportRedisURL)
	if err != nil {
		return err
	}
	defer closeFn()

	req := export.Request{
		Inputs:     args,
		Output:     exportOutput,
		Force:      exportForce,
		Name:       exportName,
		LibVersion: exportLibVersion,
	}
	if exportXML {
		req.Format = projectdump.FormatXML
	}

	result, err := exporter.Export(ctx, req)
	if err != nil {
		return exportError(err, req)
	}

	printer.Summary(result.Output, result.Report)
	if result.RunID != "" {
		printer.Info("  Run:              %s\n", result.RunID)
	}
	return nil
}

// applyExportFlags copies explicitly set flags over the configuration.
func applyExportFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("repository") {
		cfg.Repository = exportRepository
	}
	if flags.Changed("attach-resources") {
		cfg.Attachments.AttachResources = exportAttach
	}
	if err := cfg.Validate(); err != nil {
		return printer.Error(
			"invalid export options",
			err.Error(),
			[]string{"Repository ids may only contain letters, digits, '_' and '-'"},
		)
	}
	return nil
}

// newExporter builds the exporter with optional metrics and history. The
// returned function releases the history connection.
func newExporter(ctx context.Context, cfg *config.Config, metricsFile, redisURL string) (*export.Exporter, func(), error) {
	logger := slog.Default()
	exporter := export.New(cfg, logger)
	closeFn := func() {}

	if metricsFile != "" {
		exporter.WithMetrics(metrics.NewRecorder(), metricsFile)
	}

	if redisURL == "" && cfg.Ledger != nil {
		redisURL = cfg.Ledger.RedisURL
	}
	if redisURL == "" {
		return exporter, closeFn, nil
	}

	client, err := ledger.Dial(redisURL, cfg.Repository)
	if err != nil {
		return nil, nil, printer.Error(
			"invalid Redis URL",
			err.Error(),
			[]string{"Use a URL like redis://localhost:6379/0"},
		)
	}
	if err := client.Ping(ctx); err != nil {
		// Export without history
		printer.Warning("Export history disabled: could not connect to Redis at %s\n", redisURL)
		client.Close()
		return exporter, closeFn, nil
	}

	exporter.WithHistory(client.WithLogger(logger))
	return exporter, func() { client.Close() }, nil
}

func exportError(err error, req export.Request) error {
	if errors.Is(err, export.ErrOutputExists) {
		return printer.Error(
			"output file already exists",
			err.Error(),
			[]string{
				"Overwrite it:\n  libdoc2tb export ... --force",
				"Write somewhere else:\n  libdoc2tb export ... -o other.zip",
			},
		)
	}
	if errors.Is(err, projectdump.ErrMissingSource) {
		return printer.Error(
			"resource source missing",
			err.Error(),
			[]string{
				"Regenerate the resource spec so its 'source' points at the .resource file",
				"Disable attachments:\n  libdoc2tb export ... --attach-resources=false",
			},
		)
	}
	return printer.ErrorWithContext(
		"export failed",
		err.Error(),
		map[string]string{"Inputs": strings.Join(req.Inputs, " ")},
		nil,
	)
}
