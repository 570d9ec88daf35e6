package ledger

import "fmt"

// RunKey returns the Redis key of one run hash.
// Pattern: libdoc2tb:{repository}:run:{run_id}
func RunKey(repository, runID string) string {
	return fmt.Sprintf("libdoc2tb:%s:run:%s", repository, runID)
}

// RunIndexKey returns the Redis key of the time-ordered run index.
// Pattern: libdoc2tb:{repository}:runs
func RunIndexKey(repository string) string {
	return fmt.Sprintf("libdoc2tb:%s:runs", repository)
}
