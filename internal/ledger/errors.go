package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// maxListedMatches caps the ids listed by FormatAmbiguousError.
const maxListedMatches = 10

// NotFoundError indicates no run matched the id or prefix.
type NotFoundError struct {
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no runs found matching '%s'", e.ShortID)
}

// AmbiguousError indicates several runs matched the prefix.
type AmbiguousError struct {
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d runs", e.ShortID, len(e.Matches))
}

// IsAmbiguous reports whether err is an AmbiguousError.
func IsAmbiguous(err error) bool {
	var amb *AmbiguousError
	return errors.As(err, &amb)
}

// FormatAmbiguousError lists the matching ids, at most maxListedMatches of them.
func FormatAmbiguousError(err *AmbiguousError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ambiguous short ID '%s' matches %d runs:\n", err.ShortID, len(err.Matches))

	for i, id := range err.Matches {
		if i == maxListedMatches {
			fmt.Fprintf(&b, "  ...and %d more\n", len(err.Matches)-maxListedMatches)
			break
		}
		fmt.Fprintf(&b, "  %s\n", id)
	}

	b.WriteString("\nUse a longer prefix to uniquely identify the run.")
	return b.String()
}
