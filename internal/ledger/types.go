package ledger

import (
	"fmt"
	"time"

	"github.com/dyluth/libdoc2tb/pkg/projectdump"
	"github.com/google/uuid"
)

// Run is the history record of one export.
type Run struct {
	ID           string   `json:"id"`
	Repository   string   `json:"repository"`
	Libraries    []string `json:"libraries"`
	Output       string   `json:"output"`
	Format       string   `json:"format"`
	Elements     int      `json:"elements"`
	DataTypes    int      `json:"data_types"`
	Interactions int      `json:"interactions"`
	Parameters   int      `json:"parameters"`
	Unresolved   int      `json:"unresolved"`
	KeysIssued   int64    `json:"keys_issued"`
	DurationMs   int64    `json:"duration_ms"`
	CreatedAtMs  int64    `json:"created_at_ms"`
}

// NewRun builds the record of an export that finished at created.
func NewRun(repository, output string, format projectdump.Format, libraries []string, report *projectdump.Report, duration time.Duration, created time.Time) *Run {
	return &Run{
		ID:           uuid.NewString(),
		Repository:   repository,
		Libraries:    append([]string{}, libraries...),
		Output:       output,
		Format:       string(format),
		Elements:     report.TotalElements(),
		DataTypes:    report.Elements[projectdump.KindDataType],
		Interactions: report.Elements[projectdump.KindInteraction],
		Parameters:   report.Parameters,
		Unresolved:   len(report.Unresolved),
		KeysIssued:   report.KeysIssued,
		DurationMs:   duration.Milliseconds(),
		CreatedAtMs:  created.UnixMilli(),
	}
}

// Validate checks the fields every stored run must carry.
func (r *Run) Validate() error {
	if _, err := uuid.Parse(r.ID); err != nil {
		return fmt.Errorf("id must be a valid UUID: %w", err)
	}
	if r.Repository == "" {
		return fmt.Errorf("repository is required")
	}
	if r.CreatedAtMs <= 0 {
		return fmt.Errorf("created_at_ms must be positive")
	}
	return nil
}

// CreatedAt returns the creation time of the run.
func (r *Run) CreatedAt() time.Time {
	return time.UnixMilli(r.CreatedAtMs)
}
