package printer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dyluth/libdoc2tb/pkg/projectdump"
	"github.com/fatih/color"
)

func init() {
	// Keep colors when piped; NO_COLOR disables them
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

// Stdout and Stderr are the destinations of all printer output. Tests swap them.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// Success prints a green message prefixed with a checkmark
func Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		msg = "✓ " + msg
	}
	green.Fprint(Stdout, msg)
}

// Info prints an uncolored message
func Info(format string, a ...any) {
	fmt.Fprintf(Stdout, format, a...)
}

// Warning prints a yellow message prefixed with a warning sign
func Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠️") {
		msg = "⚠️  " + msg
	}
	yellow.Fprint(Stdout, msg)
}

// Step prints one step of a multi-step operation
func Step(format string, a ...any) {
	cyan.Fprintf(Stdout, "→ %s", fmt.Sprintf(format, a...))
}

// Error prints title, explanation and suggestions to Stderr and returns an
// error carrying only the title, for cobra to return with SilenceErrors set.
func Error(title string, explanation string, suggestions []string) error {
	return ErrorWithContext(title, explanation, nil, suggestions)
}

// ErrorWithContext is Error with key/value details printed between the
// explanation and the suggestions. Keys are printed in sorted order.
func ErrorWithContext(title string, explanation string, context map[string]string, suggestions []string) error {
	red.Fprintf(Stderr, "%s\n\n", title)

	if explanation != "" {
		fmt.Fprintf(Stderr, "%s\n", explanation)
	}

	if len(context) > 0 {
		keys := make([]string, 0, len(context))
		for key := range context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Fprintln(Stderr)
		for _, key := range keys {
			fmt.Fprintf(Stderr, "  %s: %s\n", key, context[key])
		}
	}

	writeSuggestions(Stderr, suggestions)

	return fmt.Errorf("%s", title)
}

func writeSuggestions(w io.Writer, suggestions []string) {
	switch len(suggestions) {
	case 0:
		return
	case 1:
		fmt.Fprintf(w, "\n%s\n", suggestions[0])
	default:
		fmt.Fprintf(w, "\nEither:\n")
		for i, suggestion := range suggestions {
			fmt.Fprintf(w, "  %d. %s\n", i+1, suggestion)
		}
	}
}

// maxListedUnresolved caps the unresolved references listed in a summary.
const maxListedUnresolved = 10

// Summary prints the outcome of one export: where it went, what it contains
// and which parameter types stayed unresolved.
func Summary(output string, report *projectdump.Report) {
	Success("Wrote %s\n", output)
	Info("  Libraries:        %d\n", report.Libraries)
	Info("  Data types:       %d (%d representatives)\n", report.Elements[projectdump.KindDataType], report.Representatives)
	Info("  Interactions:     %d (%d parameters)\n", report.Elements[projectdump.KindInteraction], report.Parameters)
	if report.Attachments > 0 {
		Info("  Attachments:      %d\n", report.Attachments)
	}
	Info("  Keys issued:      %d\n", report.KeysIssued)

	if len(report.Unresolved) == 0 {
		return
	}

	Warning("%d parameter type(s) could not be resolved and reference -1:\n", len(report.Unresolved))
	for i, ref := range report.Unresolved {
		if i == maxListedUnresolved {
			faint.Fprintf(Stdout, "    ... and %d more\n", len(report.Unresolved)-maxListedUnresolved)
			break
		}
		Info("    %s.%s(%s): %s\n", ref.Library, ref.Keyword, ref.Parameter, strings.Join(ref.Types, " | "))
	}
}
