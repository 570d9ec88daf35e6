package ledger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTable(t *testing.T) {
	t.Run("no runs", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Equal(t, 0, FormatTable(&buf, nil, "itba", base))
		assert.Equal(t, "No export runs found for repository 'itba'\n", buf.String())
	})

	t.Run("rows", func(t *testing.T) {
		var buf bytes.Buffer
		clean := testRun("aaaaaa11-1111-4111-8111-111111111111", base.Add(-5*time.Minute))
		clean.Unresolved = 0
		dirty := testRun("bbbbbb22-2222-4222-8222-222222222222", base.Add(-3*24*time.Hour))
		dirty.Output = "/very/long/path/that/does/not/fit/into/the/column/project-dump.zip"

		n := FormatTable(&buf, []*Run{clean, dirty}, "itba", base)
		assert.Equal(t, 2, n)

		out := buf.String()
		assert.Contains(t, out, "Export runs for repository 'itba'")
		assert.Contains(t, out, "aaaaaa11")
		assert.NotContains(t, out, "aaaaaa11-1111")
		assert.Contains(t, out, "5m ago")
		assert.Contains(t, out, "3d ago")
		assert.Contains(t, out, "...")
		assert.Contains(t, out, "project-dump.zip")
		assert.Contains(t, out, "2 runs found")
	})
}

func TestFormatJSONL(t *testing.T) {
	var buf bytes.Buffer
	runs := []*Run{
		testRun("aaaaaa11-1111-4111-8111-111111111111", base),
		testRun("bbbbbb22-2222-4222-8222-222222222222", base),
	}
	require.NoError(t, FormatJSONL(&buf, runs))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var decoded Run
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &decoded))
	assert.Equal(t, runs[1], &decoded)
}

func TestFormatSingleJSON(t *testing.T) {
	var buf bytes.Buffer
	run := testRun("aaaaaa11-1111-4111-8111-111111111111", base)
	require.NoError(t, FormatSingleJSON(&buf, run))

	assert.True(t, strings.HasSuffix(buf.String(), "}\n"))
	assert.Contains(t, buf.String(), "\n  \"libraries\": [")
}

func TestWriteRuns(t *testing.T) {
	runs := []*Run{testRun("aaaaaa11-1111-4111-8111-111111111111", base)}

	var table, jsonl bytes.Buffer
	require.NoError(t, WriteRuns(&table, runs, "itba", OutputFormatDefault, base))
	require.NoError(t, WriteRuns(&jsonl, runs, "itba", OutputFormatJSONL, base))
	assert.Contains(t, table.String(), "1 run found")
	assert.True(t, strings.HasPrefix(jsonl.String(), "{"))

	err := WriteRuns(&bytes.Buffer{}, runs, "itba", "yaml", base)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format: yaml")
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		ago      time.Duration
		expected string
	}{
		{10 * time.Second, "10s ago"},
		{2 * time.Hour, "2h ago"},
		{49 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatAge(base.Add(-tt.ago).UnixMilli(), base))
		})
	}
	assert.Equal(t, "-", formatAge(0, base))
}
