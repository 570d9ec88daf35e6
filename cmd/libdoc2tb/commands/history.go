package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dyluth/libdoc2tb/internal/ledger"
	"github.com/dyluth/libdoc2tb/internal/printer"
	"github.com/dyluth/libdoc2tb/internal/timespec"
	"github.com/spf13/cobra"
)

var (
	historyRedisURL     string
	historyOutputFormat string
	historySince        string
	historyUntil        string
)

var historyCmd = &cobra.Command{
	Use:   "history [RUN_ID]",
	Short: "Inspect the export history",
	Long: `Inspect recorded export runs in list or get mode.

List Mode (no RUN_ID):
  Displays runs of the configured repository as a table or JSONL stream.

Get Mode (with RUN_ID):
  Displays one run as pretty-printed JSON.
  Supports short IDs (e.g., "abc123" instead of the full UUID).

Output Formats (list mode only):
  default - Human-readable table with ID, Age, Libraries, Elements, Unresolved and Output
  jsonl   - Line-delimited JSON, one run per line

Time Filters (list mode only):
  --since  - Show runs created after this time
  --until  - Show runs created before this time

Examples:
  # Runs of the last day
  libdoc2tb history --redis-url redis://localhost:6379 --since 24h

  # Runs as JSONL for piping to jq
  libdoc2tb history --output=jsonl | jq 'select(.unresolved > 0) | .id'

  # One run by short ID
  libdoc2tb history 3f2a9c`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyRedisURL, "redis-url", "", "Redis URL of the export history (default from config ledger.redis_url)")
	historyCmd.Flags().StringVarP(&historyOutputFormat, "output", "o", "default", "Output format: default or jsonl (ignored in get mode)")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Show runs after time (duration, date or RFC3339)")
	historyCmd.Flags().StringVar(&historyUntil, "until", "", "Show runs before time (duration, date or RFC3339)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	isGetMode := len(args) > 0

	var outputFormat ledger.OutputFormat
	if !isGetMode {
		switch historyOutputFormat {
		case "default":
			outputFormat = ledger.OutputFormatDefault
		case "jsonl":
			outputFormat = ledger.OutputFormatJSONL
		default:
			return printer.Error(
				"invalid output format",
				fmt.Sprintf("Unknown format: %s", historyOutputFormat),
				[]string{"Valid formats: default, jsonl"},
			)
		}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	redisURL := historyRedisURL
	if redisURL == "" && cfg.Ledger != nil {
		redisURL = cfg.Ledger.RedisURL
	}
	if redisURL == "" {
		return printer.Error(
			"no export history configured",
			"The history is stored in Redis, but no Redis URL was given.",
			[]string{
				"Pass it on the command line:\n  libdoc2tb history --redis-url redis://localhost:6379",
				"Or set it in libdoc2tb.yml:\n  ledger:\n    redis_url: redis://localhost:6379",
			},
		)
	}

	client, err := ledger.Dial(redisURL, cfg.Repository)
	if err != nil {
		return printer.Error("invalid Redis URL", err.Error(), []string{"Use a URL like redis://localhost:6379/0"})
	}
	defer client.Close()

	if err := client.Ping(ctx); err != nil {
		return printer.ErrorWithContext(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis at %s", redisURL),
			map[string]string{"Error": err.Error()},
			[]string{"Check that Redis is running and reachable"},
		)
	}

	if isGetMode {
		return showRun(ctx, client, args[0])
	}

	window, err := timespec.ParseRange(historySince, historyUntil, time.Now())
	if err != nil {
		return printer.Error(
			"invalid time filter",
			err.Error(),
			[]string{"Use a duration like '1h30m', a date like '2025-10-29' or RFC3339 like '2025-10-29T13:00:00Z'"},
		)
	}

	runs, err := client.ListRuns(ctx, window)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return ledger.WriteRuns(os.Stdout, runs, cfg.Repository, outputFormat, time.Now())
}

func showRun(ctx context.Context, client *ledger.Client, shortID string) error {
	fullID, err := client.ResolveRunID(ctx, shortID)
	if err != nil {
		if ledger.IsAmbiguous(err) {
			ambigErr := err.(*ledger.AmbiguousError)
			fmt.Fprintln(os.Stderr, ledger.FormatAmbiguousError(ambigErr))
			return fmt.Errorf("ambiguous short ID")
		}
		if ledger.IsNotFound(err) {
			return printer.Error(
				fmt.Sprintf("run with ID '%s' not found", shortID),
				"No recorded export run matches this ID.",
				[]string{"List recorded runs:\n  libdoc2tb history"},
			)
		}
		return printer.Error("invalid run ID", err.Error(), nil)
	}

	run, err := client.GetRun(ctx, fullID)
	if err != nil {
		if ledger.IsNotFound(err) {
			return printer.Error(
				fmt.Sprintf("run with ID '%s' not found", fullID),
				"The run was resolved but could not be fetched.",
				[]string{"This might indicate a race condition. Try again."},
			)
		}
		return fmt.Errorf("failed to get run: %w", err)
	}
	return ledger.FormatSingleJSON(os.Stdout, run)
}
