// Package pdf loads PDF documents as pages of text runs using pdfcpu.
package pdf

import (
	"context"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"

	"github.com/custodia-labs/pdfboard/internal/adapters/driven/renderer"
	"github.com/custodia-labs/pdfboard/internal/logger"
)

// Ensure Loader implements the interface.
var _ renderer.Loader = (*Loader)(nil)

// Loader reads the text of each page from its content streams.
type Loader struct{}

// New creates a PDF loader.
func New() *Loader {
	return &Loader{}
}

// Load implements renderer.Loader.
func (l *Loader) Load(ctx context.Context, path string) ([]renderer.Page, error) {
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf %s: %w", path, err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, fmt.Errorf("validate pdf %s: %w", path, err)
	}

	pages := make([]renderer.Page, 0, pdfCtx.PageCount)
	for nr := 1; nr <= pdfCtx.PageCount; nr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r, err := pdfcpu.ExtractPageContent(pdfCtx, nr)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", nr, err)
		}
		if r == nil {
			pages = append(pages, nil)
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", nr, err)
		}
		pages = append(pages, ExtractRuns(content))
	}

	logger.Debug("pdf: loaded %s (%d pages)", path, len(pages))
	return pages, nil
}

// NewRenderer returns a renderer that opens PDFs with this loader and
// everything else as plain text.
func NewRenderer() *renderer.Renderer {
	return renderer.New(renderer.NewByExtension(renderer.TextLoader{}).Register("pdf", New()))
}
