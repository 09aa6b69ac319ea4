package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
	"github.com/custodia-labs/pdfboard/internal/logger"
)

// Matcher finds where a reference text occurs in a run.
type Matcher interface {
	// Match returns sorted, non-overlapping spans of needle in text.
	Match(text, needle string) []domain.Span
}

// SubstringMatcher matches every literal occurrence of the needle.
type SubstringMatcher struct{}

// Match implements Matcher.
func (SubstringMatcher) Match(text, needle string) []domain.Span {
	if needle == "" {
		return nil
	}
	var spans []domain.Span
	offset := 0
	for {
		i := strings.Index(text[offset:], needle)
		if i < 0 {
			return spans
		}
		start := offset + i
		spans = append(spans, domain.Span{Start: start, End: start + len(needle)})
		offset = start + len(needle)
	}
}

// HighlightEngine keeps at most one chunk's reference highlighted on the
// renderer's current text surface.
// Not safe for concurrent use; the Board calls it from its loop.
type HighlightEngine struct {
	renderer driven.DocumentRenderer
	matcher  Matcher
	active   string
}

// NewHighlightEngine creates an engine. A nil matcher means SubstringMatcher.
func NewHighlightEngine(renderer driven.DocumentRenderer, matcher Matcher) *HighlightEngine {
	if matcher == nil {
		matcher = SubstringMatcher{}
	}
	return &HighlightEngine{renderer: renderer, matcher: matcher}
}

// Active returns the chunk whose reference is highlighted, or "".
func (h *HighlightEngine) Active() string {
	return h.active
}

// ClearHighlights strips all highlight markup from the current surface.
// Safe to call when nothing is highlighted.
func (h *HighlightEngine) ClearHighlights() {
	h.active = ""
	surface := h.renderer.Surface()
	if surface == nil {
		return
	}
	for i, run := range surface.Runs() {
		if run.Highlighted() {
			surface.SetMarkup(i, domain.StripMarks(run.Markup))
		}
	}
}

// ApplyHighlight switches to page if needed, then wraps every occurrence of
// text in highlight markup. Zero matches is not an error.
func (h *HighlightEngine) ApplyHighlight(ctx context.Context, page int, text, color string) (int, error) {
	view := h.renderer.View()
	if !view.IsOpen() {
		return 0, domain.ErrNoDocument
	}
	if page != view.CurrentPage {
		if err := h.renderer.GoToPage(ctx, page); err != nil {
			return 0, fmt.Errorf("go to page %d: %w", page, err)
		}
	}

	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	surface := h.renderer.Surface()
	if surface == nil {
		return 0, nil
	}

	count := 0
	for i, run := range surface.Runs() {
		spans := h.matcher.Match(run.Text, text)
		if len(spans) == 0 {
			continue
		}
		surface.SetMarkup(i, domain.MarkSpans(run.Text, spans, color))
		count += len(spans)
	}

	logger.Debug("highlight: %d match(es) for %q on page %d", count, text, page)
	return count, nil
}

// Highlight clears existing marks, then highlights c's reference.
func (h *HighlightEngine) Highlight(ctx context.Context, c domain.Chunk) (int, error) {
	h.ClearHighlights()
	if c.Reference.IsZero() || c.Reference.Page < 1 {
		return 0, nil
	}
	n, err := h.ApplyHighlight(ctx, c.Reference.Page, c.Reference.Text, c.Style.Color)
	if err != nil {
		return 0, err
	}
	h.active = c.ID
	return n, nil
}
