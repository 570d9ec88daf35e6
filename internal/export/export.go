// Package export runs the complete export pipeline: expand inputs, load specs,
// assemble the project-dump, write it and record what happened.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dyluth/libdoc2tb/internal/config"
	"github.com/dyluth/libdoc2tb/internal/doctext"
	"github.com/dyluth/libdoc2tb/internal/ledger"
	"github.com/dyluth/libdoc2tb/internal/metrics"
	"github.com/dyluth/libdoc2tb/pkg/libdoc"
	"github.com/dyluth/libdoc2tb/pkg/projectdump"
)

// ErrOutputExists is returned when the output file exists and overwriting was not requested.
var ErrOutputExists = errors.New("output file already exists")

// RunRecorder stores the history record of an export.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *ledger.Run) error
}

// Request describes one export.
type Request struct {
	Inputs []string // Spec paths or glob patterns, in processing order
	Output string
	Format projectdump.Format // Empty picks the format from the output path
	Force  bool               // Replace an existing output file

	// Overrides for a single input spec
	Name       string
	LibVersion string
}

// Result describes a finished export.
type Result struct {
	Output    string
	Format    projectdump.Format
	Specs     []string
	Libraries []string
	Report    *projectdump.Report
	Duration  time.Duration
	RunID     string // Empty when no history is recorded
}

// Exporter runs exports against one configuration.
type Exporter struct {
	cfg         *config.Config
	renderer    *doctext.Renderer
	logger      *slog.Logger
	now         func() time.Time
	metrics     *metrics.Recorder
	metricsFile string
	history     RunRecorder
}

// New creates an exporter. A nil logger uses slog.Default().
func New(cfg *config.Config, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		cfg:      cfg,
		renderer: doctext.NewRenderer(logger),
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for createdTime and durations.
func (e *Exporter) WithClock(now func() time.Time) *Exporter {
	e.now = now
	return e
}

// WithMetrics records every export in rec and, when path is set, rewrites the
// textfile at path after each export.
func (e *Exporter) WithMetrics(rec *metrics.Recorder, path string) *Exporter {
	e.metrics = rec
	e.metricsFile = path
	return e
}

// WithHistory records every successful export with history.
func (e *Exporter) WithHistory(history RunRecorder) *Exporter {
	e.history = history
	return e
}

// Build assembles libs into a document using the exporter configuration.
func (e *Exporter) Build(libs []*libdoc.Library) (*projectdump.Document, *projectdump.Report, error) {
	opts := e.cfg.AssemblerOptions(e.now())
	opts.Describe = e.renderer.Render
	opts.Logger = e.logger
	return projectdump.NewAssembler(opts).Assemble(libs)
}

// Export runs one export. Failures are observed in the metrics before returning.
func (e *Exporter) Export(ctx context.Context, req Request) (*Result, error) {
	result, err := e.export(ctx, req)
	if err != nil {
		if e.metrics != nil {
			e.metrics.ObserveFailure()
			e.writeMetrics()
		}
		return nil, err
	}
	return result, nil
}

func (e *Exporter) export(ctx context.Context, req Request) (*Result, error) {
	start := e.now()

	output := req.Output
	if output == "" {
		output = e.cfg.Output.Path
	}
	format := req.Format
	switch {
	case format != "":
	case req.Output == "":
		format = e.cfg.OutputFormat()
	default:
		format = projectdump.FormatForPath(output)
	}

	if !req.Force {
		if _, err := os.Stat(output); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrOutputExists, output)
		}
	}

	specs, err := libdoc.Expand(req.Inputs)
	if err != nil {
		return nil, err
	}

	libs, err := libdoc.LoadAll(specs)
	if err != nil {
		return nil, err
	}

	if err := applyOverrides(libs, req); err != nil {
		return nil, err
	}

	doc, report, err := e.Build(libs)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := projectdump.WriteFile(output, doc, format); err != nil {
		return nil, err
	}

	finished := e.now()
	result := &Result{
		Output:    output,
		Format:    format,
		Specs:     specs,
		Libraries: libraryNames(libs),
		Report:    report,
		Duration:  finished.Sub(start),
	}

	e.logger.Debug("Export written",
		"output", output,
		"format", format,
		"libraries", len(libs),
		"duration", result.Duration)

	if e.metrics != nil {
		e.metrics.Observe(report, result.Duration, finished)
		e.writeMetrics()
	}

	if e.history != nil {
		run := ledger.NewRun(e.cfg.Repository, output, format, result.Libraries, report, result.Duration, finished)
		if err := e.history.RecordRun(ctx, run); err != nil {
			// History is best effort once the dump is on disk
			e.logger.Warn("Failed to record export run", "error", err)
		} else {
			result.RunID = run.ID
		}
	}

	return result, nil
}

func (e *Exporter) writeMetrics() {
	if e.metricsFile == "" {
		return
	}
	if err := e.metrics.WriteTextfile(e.metricsFile); err != nil {
		e.logger.Warn("Failed to write metrics", "path", e.metricsFile, "error", err)
	}
}

// applyOverrides sets the name and version of a single input library.
func applyOverrides(libs []*libdoc.Library, req Request) error {
	if req.Name == "" && req.LibVersion == "" {
		return nil
	}
	if len(libs) != 1 {
		return fmt.Errorf("--name and --lib-version need exactly one input spec, got %d", len(libs))
	}
	if req.Name != "" {
		libs[0].Name = req.Name
	}
	if req.LibVersion != "" {
		libs[0].Version = req.LibVersion
	}
	return nil
}

func libraryNames(libs []*libdoc.Library) []string {
	names := make([]string, 0, len(libs))
	for _, lib := range libs {
		names = append(names, lib.Name)
	}
	return names
}
