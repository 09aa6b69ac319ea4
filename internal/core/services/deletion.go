package services

import (
	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
	"github.com/custodia-labs/pdfboard/internal/logger"
)

// DeletionCoordinator runs the two-phase delete: request, then confirm or cancel.
// Only one deletion is pending at a time; a second request replaces the first.
// Not safe for concurrent use; the Board calls it from its loop.
type DeletionCoordinator struct {
	chunks    driven.ChunkStore
	graph     *GraphProjection
	highlight *HighlightEngine
	state     domain.DeletionState
}

// NewDeletionCoordinator creates a coordinator.
func NewDeletionCoordinator(
	chunks driven.ChunkStore,
	graph *GraphProjection,
	highlight *HighlightEngine,
) *DeletionCoordinator {
	return &DeletionCoordinator{
		chunks:    chunks,
		graph:     graph,
		highlight: highlight,
	}
}

// Request records id as pending and reports whether it did. Nothing is
// mutated. Absent ids are ignored and leave any pending deletion in place.
func (d *DeletionCoordinator) Request(id string) bool {
	if _, ok := d.chunks.Get(id); !ok {
		logger.Debug("deletion: ignoring request for absent chunk %s", id)
		return false
	}
	if prev, ok := d.state.Pending(); ok && prev != id {
		logger.Debug("deletion: %s replaces pending %s", id, prev)
	}
	d.state = d.state.Request(id)
	return true
}

// Confirm removes the pending chunk, every edge touching it, and all
// highlights. Returns the removed id.
func (d *DeletionCoordinator) Confirm() (string, error) {
	if d.state.IsIdle() {
		return "", domain.ErrNoPendingDelete
	}
	var id string
	d.state, id = d.state.Resolve()

	removed := d.chunks.Remove(id)
	edges := d.graph.Cascade(id)
	d.highlight.ClearHighlights()

	logger.Debug("deletion: confirmed %s (removed=%t, edges=%d)", id, removed, edges)
	return id, nil
}

// Cancel abandons the pending deletion. Returns false if none was pending.
func (d *DeletionCoordinator) Cancel() bool {
	if d.state.IsIdle() {
		return false
	}
	var id string
	d.state, id = d.state.Resolve()
	logger.Debug("deletion: cancelled %s", id)
	return true
}

// Pending returns the id awaiting confirmation.
func (d *DeletionCoordinator) Pending() (string, bool) {
	return d.state.Pending()
}
