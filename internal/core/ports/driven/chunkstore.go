package driven

import "github.com/custodia-labs/pdfboard/internal/core/domain"

// ChunkStore owns the canonical collection of chunks.
// Operations on absent ids are safe no-ops, never errors: late generation
// results and repeated deletes must not fail.
type ChunkStore interface {
	// Create inserts a chunk built from draft and returns its new id.
	// Ids are unique and never reused.
	Create(draft domain.ChunkDraft) string

	// Patch applies a partial update. Returns false if id is absent.
	Patch(id string, patch domain.ChunkPatch) bool

	// Remove deletes a chunk. Returns false if id was absent.
	Remove(id string) bool

	// Get returns a chunk by id.
	Get(id string) (domain.Chunk, bool)

	// List returns every chunk in insertion order.
	List() []domain.Chunk

	// Len returns the number of chunks.
	Len() int

	// Clear removes every chunk.
	Clear()
}
