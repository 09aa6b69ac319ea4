package renderer

import (
	"sync"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
)

// Ensure Surface implements the interface.
var _ driven.TextSurface = (*Surface)(nil)

// Surface is the mutable text surface of one rendered page.
type Surface struct {
	page int

	mu   sync.RWMutex
	runs []domain.TextRun
}

func newSurface(page int, texts Page) *Surface {
	runs := make([]domain.TextRun, len(texts))
	for i, t := range texts {
		runs[i] = domain.TextRun{Text: t, Markup: domain.EscapeText(t)}
	}
	return &Surface{page: page, runs: runs}
}

// Page is the page this surface belongs to.
func (s *Surface) Page() int {
	return s.page
}

// Runs returns a snapshot of the runs.
func (s *Surface) Runs() []domain.TextRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TextRun, len(s.runs))
	copy(out, s.runs)
	return out
}

// SetMarkup replaces the markup of run i.
func (s *Surface) SetMarkup(i int, markup string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.runs) {
		return false
	}
	s.runs[i].Markup = markup
	return true
}
