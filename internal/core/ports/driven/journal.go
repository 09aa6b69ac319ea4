package driven

import (
	"context"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

// GenerationJournal records request lifecycle events.
// It is an audit log; chunks themselves are never restored from it.
type GenerationJournal interface {
	// Record appends an entry.
	Record(ctx context.Context, entry domain.JournalEntry) error

	// List returns entries for chunkID in recording order.
	// An empty chunkID returns every entry.
	List(ctx context.Context, chunkID string) ([]domain.JournalEntry, error)

	// Close releases resources.
	Close() error
}
