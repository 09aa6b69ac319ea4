// Package renderer provides a paged document renderer over pluggable loaders.
//
// A Loader turns a file into pages of text runs; the Renderer owns pagination
// and the text surface of the current page.
package renderer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.DocumentRenderer = (*Renderer)(nil)

// Page is the text of one page as runs in reading order.
type Page []string

// Text returns the plain text of the page, one run per line.
func (p Page) Text() string {
	return strings.Join(p, "\n")
}

// Loader extracts pages of text from a document.
type Loader interface {
	// Load reads path and returns its pages.
	Load(ctx context.Context, path string) ([]Page, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, path string) ([]Page, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, path string) ([]Page, error) {
	return f(ctx, path)
}

// Renderer renders one document at a time.
type Renderer struct {
	loader Loader

	mu      sync.RWMutex
	view    domain.DocumentView
	pages   []Page
	surface *Surface
}

// New creates a renderer backed by loader.
func New(loader Loader) *Renderer {
	return &Renderer{loader: loader}
}

// Open loads a document and shows page 1.
func (r *Renderer) Open(ctx context.Context, path string) (domain.DocumentView, error) {
	pages, err := r.loader.Load(ctx, path)
	if err != nil {
		return domain.DocumentView{}, err
	}
	if len(pages) == 0 {
		return domain.DocumentView{}, fmt.Errorf("%s has no pages: %w", path, domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = pages
	r.view = domain.DocumentView{Path: path, PageCount: len(pages), CurrentPage: 1}
	r.surface = newSurface(1, pages[0])
	return r.view, nil
}

// View returns the current pagination state.
func (r *Renderer) View() domain.DocumentView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view
}

// GoToPage renders page with fresh, unhighlighted markup.
func (r *Renderer) GoToPage(ctx context.Context, page int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.view.IsOpen() {
		return domain.ErrNoDocument
	}
	if !r.view.ValidPage(page) {
		return fmt.Errorf("page %d of %d: %w", page, r.view.PageCount, domain.ErrPageOutOfRange)
	}
	r.view.CurrentPage = page
	r.surface = newSurface(page, r.pages[page-1])
	return nil
}

// Surface returns the text surface of the current page, or nil if no
// document is open.
func (r *Renderer) Surface() driven.TextSurface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.surface == nil {
		return nil
	}
	return r.surface
}

// PageText returns the plain text of page.
func (r *Renderer) PageText(_ context.Context, page int) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.view.IsOpen() {
		return "", domain.ErrNoDocument
	}
	if !r.view.ValidPage(page) {
		return "", fmt.Errorf("page %d of %d: %w", page, r.view.PageCount, domain.ErrPageOutOfRange)
	}
	return r.pages[page-1].Text(), nil
}

// Close releases the open document.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = nil
	r.view = domain.DocumentView{}
	r.surface = nil
	return nil
}
