package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/dyluth/libdoc2tb/pkg/projectdump"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashToRun(t *testing.T) {
	t.Run("hash written by RunToHash reads back", func(t *testing.T) {
		run := testRun(uuid.NewString(), base)
		hash, err := RunToHash(run)
		require.NoError(t, err)

		// Redis returns every field as a string
		stringHash := make(map[string]string, len(hash))
		for k, v := range hash {
			stringHash[k] = fmt.Sprint(v)
		}

		got, err := HashToRun(stringHash)
		require.NoError(t, err)
		assert.Equal(t, run, got)
	})

	t.Run("missing fields are zero", func(t *testing.T) {
		got, err := HashToRun(map[string]string{"id": "x"})
		require.NoError(t, err)
		assert.Equal(t, "x", got.ID)
		assert.Equal(t, []string{}, got.Libraries)
		assert.Zero(t, got.CreatedAtMs)
	})

	t.Run("malformed number", func(t *testing.T) {
		_, err := HashToRun(map[string]string{"elements": "many"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid elements field")
	})

	t.Run("malformed libraries", func(t *testing.T) {
		_, err := HashToRun(map[string]string{"libraries": "[oops"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal libraries")
	})
}

func TestNewRun(t *testing.T) {
	report := &projectdump.Report{
		Libraries: 2,
		Elements: map[projectdump.Kind]int{
			projectdump.KindSubdivision: 3,
			projectdump.KindDataType:    1,
			projectdump.KindInteraction: 4,
		},
		Parameters: 5,
		KeysIssued: 20,
		Unresolved: []projectdump.UnresolvedReference{{Library: "Calc"}},
	}

	run := NewRun("itba", "out.zip", projectdump.FormatZip, []string{"Calc", "common"}, report, 1500*time.Millisecond, base)

	require.NoError(t, run.Validate())
	assert.Equal(t, 8, run.Elements)
	assert.Equal(t, 1, run.DataTypes)
	assert.Equal(t, 4, run.Interactions)
	assert.Equal(t, 1, run.Unresolved)
	assert.Equal(t, int64(1500), run.DurationMs)
	assert.Equal(t, "zip", run.Format)
	assert.True(t, base.Equal(run.CreatedAt()))
}

func TestRunValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Run)
		errMsg string
	}{
		{"bad id", func(r *Run) { r.ID = "123" }, "valid UUID"},
		{"no repository", func(r *Run) { r.Repository = "" }, "repository is required"},
		{"no timestamp", func(r *Run) { r.CreatedAtMs = 0 }, "created_at_ms must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := testRun(uuid.NewString(), base)
			tt.mutate(run)
			err := run.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSchema(t *testing.T) {
	assert.Equal(t, "libdoc2tb:itba:run:abc", RunKey("itba", "abc"))
	assert.Equal(t, "libdoc2tb:itba:runs", RunIndexKey("itba"))
}
