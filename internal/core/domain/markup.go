package domain

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var markPattern = regexp.MustCompile(`(?s)<mark style="[^"]*">(.*?)</mark>`)

// Span is a half-open byte range [Start, End) within a run's Text.
type Span struct {
	Start int
	End   int
}

// EscapeText returns text as plain, unhighlighted markup.
func EscapeText(text string) string {
	return html.EscapeString(text)
}

// MarkText wraps already-escaped markup in a highlight mark of the given colour.
func MarkText(markup, color string) string {
	return fmt.Sprintf(`<mark style="background: %s;">%s</mark>`, color, markup)
}

// StripMarks removes every highlight mark from markup, keeping the marked text.
func StripMarks(markup string) string {
	return markPattern.ReplaceAllString(markup, "$1")
}

// MarkSpans renders text with every span wrapped in a highlight mark.
// Spans must be sorted and non-overlapping.
func MarkSpans(text string, spans []Span, color string) string {
	var b strings.Builder
	last := 0
	for _, s := range spans {
		b.WriteString(EscapeText(text[last:s.Start]))
		b.WriteString(MarkText(EscapeText(text[s.Start:s.End]), color))
		last = s.End
	}
	b.WriteString(EscapeText(text[last:]))
	return b.String()
}

func containsMark(markup string) bool {
	return markPattern.MatchString(markup)
}
