package memory

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
// Chunks live for the session only.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[string]domain.Chunk
	order  []string
	now    func() time.Time
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[string]domain.Chunk),
		now:    time.Now,
	}
}

// Create inserts a chunk and returns its id.
func (s *ChunkStore) Create(draft domain.ChunkDraft) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[id] = domain.Chunk{
		ID:        id,
		Geometry:  draft.Geometry,
		Style:     draft.Style,
		Content:   draft.Content,
		Reference: draft.Reference,
		CreatedAt: s.now(),
	}
	s.order = append(s.order, id)
	return id
}

// Patch applies a partial update. Absent ids are ignored.
func (s *ChunkStore) Patch(id string, patch domain.ChunkPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chunks[id]
	if !ok {
		return false
	}
	s.chunks[id] = patch.Apply(c)
	return true
}

// Remove deletes a chunk.
func (s *ChunkStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chunks[id]; !ok {
		return false
	}
	delete(s.chunks, id)
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
	return true
}

// Get retrieves a chunk by id.
func (s *ChunkStore) Get(id string) (domain.Chunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chunks[id]
	return c, ok
}

// List returns all chunks in insertion order.
func (s *ChunkStore) List() []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Chunk, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.chunks[id])
	}
	return result
}

// Len returns the number of chunks.
func (s *ChunkStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Clear removes all chunks.
func (s *ChunkStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = make(map[string]domain.Chunk)
	s.order = nil
}
