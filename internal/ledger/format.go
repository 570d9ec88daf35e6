package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// OutputFormat selects how runs are listed.
type OutputFormat string

const (
	// OutputFormatDefault prints an aligned table
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL prints one complete run per line
	OutputFormatJSONL OutputFormat = "jsonl"
)

// WriteRuns writes runs in the requested format.
func WriteRuns(w io.Writer, runs []*Run, repository string, format OutputFormat, now time.Time) error {
	switch format {
	case OutputFormatDefault, "":
		FormatTable(w, runs, repository, now)
		return nil
	case OutputFormatJSONL:
		return FormatJSONL(w, runs)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// FormatTable writes runs as a table and returns the number of rows written.
func FormatTable(w io.Writer, runs []*Run, repository string, now time.Time) int {
	if len(runs) == 0 {
		fmt.Fprintf(w, "No export runs found for repository '%s'\n", repository)
		return 0
	}

	fmt.Fprintf(w, "Export runs for repository '%s':\n\n", repository)

	const row = "%-10s %-8s %-5s %-6s %-6s %-6s %s\n"
	fmt.Fprintf(w, row, "ID", "AGE", "LIBS", "TYPES", "KWS", "UNRES", "OUTPUT")
	fmt.Fprintf(w, row, "----------", "--------", "-----", "------", "------", "------", "------------------------------")

	for _, r := range runs {
		fmt.Fprintf(w, row,
			formatID(r.ID),
			formatAge(r.CreatedAtMs, now),
			fmt.Sprint(len(r.Libraries)),
			fmt.Sprint(r.DataTypes),
			fmt.Sprint(r.Interactions),
			formatUnresolved(r.Unresolved),
			formatOutput(r.Output),
		)
	}

	noun := "run"
	if len(runs) != 1 {
		noun = "runs"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(runs), noun)

	return len(runs)
}

// FormatJSONL writes each run as a single line of JSON.
func FormatJSONL(w io.Writer, runs []*Run) error {
	for _, run := range runs {
		data, err := json.Marshal(run)
		if err != nil {
			return fmt.Errorf("failed to marshal run to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// FormatSingleJSON writes one run as indented JSON.
func FormatSingleJSON(w io.Writer, run *Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run to JSON: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}

func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatUnresolved(n int) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprint(n)
}

// formatOutput keeps the tail of long paths, where the file name is.
func formatOutput(output string) string {
	if output == "" {
		return "-"
	}
	if len(output) > 40 {
		return "..." + output[len(output)-37:]
	}
	return output
}

// formatAge renders a creation time relative to now, like "5m ago".
func formatAge(createdAtMs int64, now time.Time) string {
	if createdAtMs == 0 {
		return "-"
	}

	diff := now.Sub(time.UnixMilli(createdAtMs))
	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}

