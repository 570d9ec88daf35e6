package ledger

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// RunToHash converts a run to its Redis hash. The library list is JSON-encoded
// into a single field.
func RunToHash(r *Run) (map[string]interface{}, error) {
	librariesJSON, err := json.Marshal(r.Libraries)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal libraries: %w", err)
	}

	return map[string]interface{}{
		"id":            r.ID,
		"repository":    r.Repository,
		"libraries":     string(librariesJSON),
		"output":        r.Output,
		"format":        r.Format,
		"elements":      r.Elements,
		"data_types":    r.DataTypes,
		"interactions":  r.Interactions,
		"parameters":    r.Parameters,
		"unresolved":    r.Unresolved,
		"keys_issued":   r.KeysIssued,
		"duration_ms":   r.DurationMs,
		"created_at_ms": r.CreatedAtMs,
	}, nil
}

// HashToRun converts a Redis hash back to a run.
func HashToRun(hash map[string]string) (*Run, error) {
	var libraries []string
	if librariesJSON := hash["libraries"]; librariesJSON != "" {
		if err := json.Unmarshal([]byte(librariesJSON), &libraries); err != nil {
			return nil, fmt.Errorf("failed to unmarshal libraries: %w", err)
		}
	}
	if libraries == nil {
		libraries = []string{}
	}

	run := &Run{
		ID:         hash["id"],
		Repository: hash["repository"],
		Libraries:  libraries,
		Output:     hash["output"],
		Format:     hash["format"],
	}

	ints := []struct {
		field string
		dst   *int
	}{
		{"elements", &run.Elements},
		{"data_types", &run.DataTypes},
		{"interactions", &run.Interactions},
		{"parameters", &run.Parameters},
		{"unresolved", &run.Unresolved},
	}
	for _, f := range ints {
		n, err := parseInt(hash, f.field)
		if err != nil {
			return nil, err
		}
		*f.dst = int(n)
	}

	var err error
	if run.KeysIssued, err = parseInt(hash, "keys_issued"); err != nil {
		return nil, err
	}
	if run.DurationMs, err = parseInt(hash, "duration_ms"); err != nil {
		return nil, err
	}
	if run.CreatedAtMs, err = parseInt(hash, "created_at_ms"); err != nil {
		return nil, err
	}

	return run, nil
}

// parseInt reads an integer field; a missing field is zero.
func parseInt(hash map[string]string, field string) (int64, error) {
	raw, ok := hash[field]
	if !ok || raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s field: %w", field, err)
	}
	return n, nil
}
