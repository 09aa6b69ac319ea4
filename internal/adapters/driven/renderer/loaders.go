package renderer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

// PageBreak separates pages in plain text documents.
const PageBreak = "\f"

// TextLoader reads plain text files. Pages are separated by form feeds and
// each non-blank line is one run.
type TextLoader struct{}

// Load implements Loader.
func (TextLoader) Load(_ context.Context, path string) ([]Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return SplitText(string(data)), nil
}

// SplitText splits text into pages and runs.
func SplitText(text string) []Page {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, PageBreak)
	pages := make([]Page, 0, len(parts))
	for _, part := range parts {
		var page Page
		for _, line := range strings.Split(part, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				page = append(page, line)
			}
		}
		pages = append(pages, page)
	}
	return pages
}

// StaticLoader serves documents registered in memory. Used by tests and demos.
type StaticLoader struct {
	mu   sync.RWMutex
	docs map[string][]Page
}

// NewStaticLoader creates an empty static loader.
func NewStaticLoader() *StaticLoader {
	return &StaticLoader{docs: make(map[string][]Page)}
}

// Add registers pages under path, replacing any previous document.
func (l *StaticLoader) Add(path string, pages ...Page) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.docs[path] = pages
}

// Load implements Loader.
func (l *StaticLoader) Load(_ context.Context, path string) ([]Page, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	pages, ok := l.docs[path]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", path, domain.ErrNotFound)
	}
	return pages, nil
}

// ByExtension picks a loader from the file extension. Unknown extensions
// fall back to def.
type ByExtension struct {
	loaders map[string]Loader
	def     Loader
}

// NewByExtension creates an extension dispatcher.
func NewByExtension(def Loader) *ByExtension {
	return &ByExtension{loaders: make(map[string]Loader), def: def}
}

// Register sets the loader for ext (with or without the leading dot).
func (b *ByExtension) Register(ext string, loader Loader) *ByExtension {
	b.loaders[normaliseExt(ext)] = loader
	return b
}

// Load implements Loader.
func (b *ByExtension) Load(ctx context.Context, path string) ([]Page, error) {
	if l, ok := b.loaders[normaliseExt(filepath.Ext(path))]; ok {
		return l.Load(ctx, path)
	}
	if b.def == nil {
		return nil, fmt.Errorf("no loader for %s: %w", filepath.Ext(path), domain.ErrInvalidInput)
	}
	return b.def.Load(ctx, path)
}

func normaliseExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
