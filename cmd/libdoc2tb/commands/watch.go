package commands

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dyluth/libdoc2tb/internal/export"
	"github.com/dyluth/libdoc2tb/internal/printer"
	"github.com/dyluth/libdoc2tb/internal/watch"
	"github.com/dyluth/libdoc2tb/pkg/projectdump"
	"github.com/spf13/cobra"
)

var (
	watchOutput      string
	watchXML         bool
	watchDebounce    time.Duration
	watchMetricsFile string
	watchRedisURL    string
)

var watchCmd = &cobra.Command{
	Use:   "watch <spec-or-glob>...",
	Short: "Regenerate the project-dump whenever a spec changes",
	Long: `Export once, then watch the input specs and export again after every change.

Changes are debounced, and a save that leaves a file's content unchanged does
not trigger a rebuild. The output file is always replaced. A failed rebuild is
reported and watching continues.

Examples:
  # Rebuild on every change below specs/
  libdoc2tb watch 'specs/**/*.json' -o project-dump.zip

  # Wait longer for editors that write in several steps
  libdoc2tb watch 'specs/*.json' --debounce 2s`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "Output file (default from config: project-dump.zip)")
	watchCmd.Flags().BoolVar(&watchXML, "xml", false, "Write bare XML instead of a zip archive")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before a rebuild")
	watchCmd.Flags().StringVar(&watchMetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after every export")
	watchCmd.Flags().StringVar(&watchRedisURL, "redis-url", "", "Record every run in the export history at this Redis URL")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	exporter, closeFn, err := newExporter(ctx, cfg, watchMetricsFile, watchRedisURL)
	if err != nil {
		return err
	}
	defer closeFn()

	req := export.Request{Inputs: args, Output: watchOutput, Force: true}
	if watchXML {
		req.Format = projectdump.FormatXML
	}

	result, err := exporter.Export(ctx, req)
	if err != nil {
		return exportError(err, req)
	}
	printer.Summary(result.Output, result.Report)

	w, err := watch.New(args, watchDebounce, nil)
	if err != nil {
		return printer.Error("failed to watch inputs", err.Error(), nil)
	}
	w.Prime(result.Specs)

	printer.Step("Watching %s (Ctrl+C to stop)\n", strings.Join(args, " "))

	return w.Run(ctx, func(ctx context.Context, changed []string) error {
		printer.Step("Changed: %s\n", strings.Join(changed, ", "))
		result, err := exporter.Export(ctx, req)
		if err != nil {
			printer.Warning("Rebuild failed: %v\n", err)
			return err
		}
		printer.Summary(result.Output, result.Report)
		return nil
	})
}
