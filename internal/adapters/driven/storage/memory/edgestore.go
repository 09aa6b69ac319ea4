package memory

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
)

// Ensure EdgeStore implements the interface.
var _ driven.EdgeStore = (*EdgeStore)(nil)

// EdgeStore is an in-memory implementation of driven.EdgeStore.
type EdgeStore struct {
	mu    sync.RWMutex
	edges []domain.Edge
}

// NewEdgeStore creates a new in-memory edge store.
func NewEdgeStore() *EdgeStore {
	return &EdgeStore{}
}

// Add creates an edge between source and target.
func (s *EdgeStore) Add(source, target string) domain.Edge {
	e := domain.Edge{ID: "e-" + uuid.NewString(), Source: source, Target: target}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.edges = append(s.edges, e)
	return e
}

// Remove deletes an edge by id.
func (s *EdgeStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.edges)
	s.edges = slices.DeleteFunc(s.edges, func(e domain.Edge) bool { return e.ID == id })
	return len(s.edges) != before
}

// RemoveTouching deletes every edge with chunkID as an endpoint.
func (s *EdgeStore) RemoveTouching(chunkID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.edges)
	s.edges = slices.DeleteFunc(s.edges, func(e domain.Edge) bool { return e.Touches(chunkID) })
	return before - len(s.edges)
}

// List returns all edges in creation order.
func (s *EdgeStore) List() []domain.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.edges)
}

// Clear removes all edges.
func (s *EdgeStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edges = nil
}
