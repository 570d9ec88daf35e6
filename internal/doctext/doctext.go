// Package doctext renders keyword and library documentation into the plain
// and HTML descriptions of project-dump elements.
package doctext

import (
	"log/slog"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/dyluth/libdoc2tb/pkg/libdoc"
)

// FormatHTML is the libdoc docFormat whose documentation is already HTML.
const FormatHTML = libdoc.DocFormatHTML

var excessiveLinesRe = regexp.MustCompile(`\n{3,}`)

// Renderer converts HTML documentation to Markdown-flavoured plain text.
type Renderer struct {
	converter *md.Converter
	logger    *slog.Logger
}

// NewRenderer creates a renderer. A nil logger uses slog.Default().
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	return &Renderer{converter: converter, logger: logger}
}

// Render returns the description text and HTML description for doc.
// HTML documentation keeps its markup in html and is converted for text;
// every other format is used verbatim as text with an empty html.
func (r *Renderer) Render(doc, docFormat string) (text, html string) {
	if doc == "" || !strings.EqualFold(docFormat, FormatHTML) {
		return doc, ""
	}

	markdown, err := r.converter.ConvertString(doc)
	if err != nil {
		r.logger.Debug("HTML documentation conversion failed, using raw text", "error", err)
		return doc, doc
	}
	return clean(markdown), doc
}

func clean(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	content = strings.Join(lines, "\n")
	content = excessiveLinesRe.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
