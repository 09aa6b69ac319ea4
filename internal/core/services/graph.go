package services

import (
	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
	"github.com/custodia-labs/pdfboard/internal/logger"
)

// GraphProjection presents chunks as graph nodes and owns the edge set.
//
// While a chunk is being dragged the projection is the only writer of its
// position: Move calls for that chunk are dropped until EndDrag.
// Not safe for concurrent use; the Board calls it from its loop.
type GraphProjection struct {
	chunks   driven.ChunkStore
	edges    driven.EdgeStore
	dragging map[string]bool
}

// NewGraphProjection creates a projection over the given stores.
func NewGraphProjection(chunks driven.ChunkStore, edges driven.EdgeStore) *GraphProjection {
	return &GraphProjection{
		chunks:   chunks,
		edges:    edges,
		dragging: make(map[string]bool),
	}
}

// Nodes returns one node per chunk, labelled by insertion index.
func (g *GraphProjection) Nodes() []domain.Node {
	chunks := g.chunks.List()
	nodes := make([]domain.Node, len(chunks))
	for i, c := range chunks {
		nodes[i] = domain.NodeFromChunk(c, i)
	}
	return nodes
}

// Edges returns the current links.
func (g *GraphProjection) Edges() []domain.Edge {
	return g.edges.List()
}

// IsDragging reports whether a drag owns id's position.
func (g *GraphProjection) IsDragging(id string) bool {
	return g.dragging[id]
}

// Move writes a position from a non-drag source.
// Returns false if the chunk is absent or a drag owns its position.
func (g *GraphProjection) Move(id string, pos domain.Position) bool {
	if g.dragging[id] {
		logger.Debug("graph: dropped move for %s during drag", id)
		return false
	}
	return g.chunks.Patch(id, domain.ChunkPatch{Position: &pos})
}

// BeginDrag hands id's position to the drag.
func (g *GraphProjection) BeginDrag(id string) bool {
	if _, ok := g.chunks.Get(id); !ok {
		return false
	}
	g.dragging[id] = true
	return true
}

// Drag writes a drag-reported position back immediately.
func (g *GraphProjection) Drag(id string, pos domain.Position) bool {
	return g.chunks.Patch(id, domain.ChunkPatch{Position: &pos})
}

// EndDrag writes the final drag position and releases ownership.
func (g *GraphProjection) EndDrag(id string, pos domain.Position) bool {
	delete(g.dragging, id)
	return g.chunks.Patch(id, domain.ChunkPatch{Position: &pos})
}

// Resize grows or shrinks a chunk by one step, never below the minimum.
// Only the size is written, so a resize never moves a dragged chunk.
func (g *GraphProjection) Resize(id string, direction int) bool {
	c, ok := g.chunks.Get(id)
	if !ok {
		return false
	}
	size := c.Geometry.Resized(direction).Size
	return g.chunks.Patch(id, domain.ChunkPatch{Size: &size})
}

// AdjustFont changes a chunk's font size, never below the minimum.
func (g *GraphProjection) AdjustFont(id string, delta int) bool {
	c, ok := g.chunks.Get(id)
	if !ok {
		return false
	}
	style := c.Style.FontAdjusted(delta)
	return g.chunks.Patch(id, domain.ChunkPatch{Style: &style})
}

// Recolor moves a chunk to the next palette colour.
func (g *GraphProjection) Recolor(id string) bool {
	c, ok := g.chunks.Get(id)
	if !ok {
		return false
	}
	style := c.Style.Recolored()
	return g.chunks.Patch(id, domain.ChunkPatch{Style: &style})
}

// Connect links two chunks that are both on the board.
func (g *GraphProjection) Connect(source, target string) (domain.Edge, error) {
	if _, ok := g.chunks.Get(source); !ok {
		return domain.Edge{}, domain.ErrNotFound
	}
	if _, ok := g.chunks.Get(target); !ok {
		return domain.Edge{}, domain.ErrNotFound
	}
	return g.edges.Add(source, target), nil
}

// Disconnect removes an edge.
func (g *GraphProjection) Disconnect(edgeID string) bool {
	return g.edges.Remove(edgeID)
}

// Cascade forgets everything the projection holds about a removed chunk.
func (g *GraphProjection) Cascade(chunkID string) int {
	delete(g.dragging, chunkID)
	return g.edges.RemoveTouching(chunkID)
}

// Reset drops every edge and drag.
func (g *GraphProjection) Reset() {
	g.edges.Clear()
	g.dragging = make(map[string]bool)
}
