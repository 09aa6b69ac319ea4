package driven

import "github.com/custodia-labs/pdfboard/internal/core/domain"

// EdgeStore holds user-created links between chunks.
// It does not know which chunks exist; the graph projection checks that.
type EdgeStore interface {
	// Add creates an edge and returns it with a fresh id.
	Add(source, target string) domain.Edge

	// Remove deletes an edge. Returns false if id was absent.
	Remove(id string) bool

	// RemoveTouching deletes every edge with chunkID as an endpoint
	// and returns how many were removed.
	RemoveTouching(chunkID string) int

	// List returns every edge in creation order.
	List() []domain.Edge

	// Clear removes every edge.
	Clear()
}
