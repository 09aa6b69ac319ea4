package driven

import (
	"context"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

// DocumentRenderer turns a file into paged, text-addressable output.
// The renderer owns pagination; the core reads PageCount and drives CurrentPage.
type DocumentRenderer interface {
	// Open loads a document and shows page 1.
	Open(ctx context.Context, path string) (domain.DocumentView, error)

	// View returns the current pagination state.
	View() domain.DocumentView

	// GoToPage renders page and returns once its text surface is ready.
	// Returns domain.ErrPageOutOfRange for pages outside [1, PageCount].
	GoToPage(ctx context.Context, page int) error

	// Surface returns the text surface of the current page.
	Surface() TextSurface

	// PageText returns the plain text of any page without switching to it.
	PageText(ctx context.Context, page int) (string, error)

	// Close releases the open document.
	Close() error
}

// TextSurface is the rendered text of one page as addressable runs.
type TextSurface interface {
	// Page is the page this surface belongs to.
	Page() int

	// Runs returns a snapshot of the runs in reading order.
	Runs() []domain.TextRun

	// SetMarkup replaces the markup of run i. Returns false if i is out of range.
	SetMarkup(i int, markup string) bool
}
