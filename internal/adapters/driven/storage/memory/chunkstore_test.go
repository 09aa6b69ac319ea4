package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

func draft(query string) domain.ChunkDraft {
	return domain.NewPendingDraft(query, domain.KindText, 0, 1)
}

func TestChunkStore_Create(t *testing.T) {
	store := NewChunkStore()

	id := store.Create(draft("What is X?"))

	require.NotEmpty(t, id)
	c, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, "What is X?", c.Content.Query)
	assert.Equal(t, domain.StatusPending, c.Content.Status)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestChunkStore_List_InsertionOrder(t *testing.T) {
	store := NewChunkStore()

	a := store.Create(draft("a"))
	b := store.Create(draft("b"))
	c := store.Create(draft("c"))
	store.Remove(b)
	d := store.Create(draft("d"))

	var ids []string
	for _, ch := range store.List() {
		ids = append(ids, ch.ID)
	}
	assert.Equal(t, []string{a, c, d}, ids)
	assert.Equal(t, 3, store.Len())
}

func TestChunkStore_Patch(t *testing.T) {
	store := NewChunkStore()
	id := store.Create(draft("q"))

	answer := "X is Y"
	ok := store.Patch(id, domain.ChunkPatch{Answer: &answer})

	assert.True(t, ok)
	c, _ := store.Get(id)
	assert.Equal(t, "X is Y", c.Content.Answer)
	assert.Equal(t, "q", c.Content.Query)
}

func TestChunkStore_Patch_AbsentIsNoop(t *testing.T) {
	store := NewChunkStore()
	store.Create(draft("q"))
	before := store.List()

	answer := "late"
	ok := store.Patch("missing", domain.ChunkPatch{Answer: &answer})

	assert.False(t, ok)
	assert.Equal(t, before, store.List())
	_, exists := store.Get("missing")
	assert.False(t, exists, "patch must not create a chunk")
}

func TestChunkStore_Patch_AfterRemove(t *testing.T) {
	store := NewChunkStore()
	id := store.Create(draft("q"))
	require.True(t, store.Remove(id))

	status := domain.StatusFulfilled
	assert.False(t, store.Patch(id, domain.ChunkPatch{Status: &status}))
	assert.Zero(t, store.Len())
}

func TestChunkStore_Remove_Twice(t *testing.T) {
	store := NewChunkStore()
	id := store.Create(draft("q"))

	assert.True(t, store.Remove(id))
	assert.False(t, store.Remove(id))
}

func TestChunkStore_Clear(t *testing.T) {
	store := NewChunkStore()
	store.Create(draft("a"))
	store.Create(draft("b"))

	store.Clear()

	assert.Empty(t, store.List())
	assert.Zero(t, store.Len())
}

func TestChunkStore_ConcurrentCreate_DistinctIDs(t *testing.T) {
	store := NewChunkStore()

	const n = 100
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- store.Create(draft("same query"))
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, store.Len())
}
