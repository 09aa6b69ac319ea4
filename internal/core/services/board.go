package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driving"
	"github.com/custodia-labs/pdfboard/internal/logger"
)

// Ensure Board implements the interface.
var _ driving.BoardService = (*Board)(nil)

// subscriberBuffer is how many events a slow subscriber may lag behind.
const subscriberBuffer = 64

// Board is the coordinating context over one document and its chunks.
// Every public method runs its work on the loop, so the stores, the graph,
// the highlight engine and the state machines have a single writer.
type Board struct {
	loop      *Loop
	chunks    driven.ChunkStore
	renderer  driven.DocumentRenderer
	graph     *GraphProjection
	highlight *HighlightEngine
	gateway   *GenerationGateway
	deletion  *DeletionCoordinator
	upload    *UploadTracker

	followFulfilled bool
	selected        string

	// ctx bounds page switches triggered by results rather than callers.
	ctx    context.Context
	cancel context.CancelFunc

	subMu  sync.Mutex
	subs   map[int]chan domain.Event
	nextID int

	closeOnce sync.Once
}

// NewBoard wires the board services together and starts the event loop.
// journal, metrics and matcher are optional.
func NewBoard(
	chunks driven.ChunkStore,
	edges driven.EdgeStore,
	backend driven.InferenceBackend,
	renderer driven.DocumentRenderer,
	journal driven.GenerationJournal,
	metrics driven.GenerationMetrics,
	matcher Matcher,
	settings domain.GenerationSettings,
) *Board {
	loop := NewLoop()
	graph := NewGraphProjection(chunks, edges)
	highlight := NewHighlightEngine(renderer, matcher)
	ctx, cancel := context.WithCancel(context.Background())

	b := &Board{
		loop:            loop,
		chunks:          chunks,
		renderer:        renderer,
		graph:           graph,
		highlight:       highlight,
		gateway:         NewGenerationGateway(chunks, backend, loop, journal, metrics, settings),
		deletion:        NewDeletionCoordinator(chunks, graph, highlight),
		upload:          NewUploadTracker(backend, renderer, loop),
		followFulfilled: settings.FollowFulfilled,
		ctx:             ctx,
		cancel:          cancel,
		subs:            make(map[int]chan domain.Event),
	}
	b.gateway.OnSettle(b.onSettle)
	b.upload.OnChange(func(domain.UploadStatus) {
		b.emit(domain.Event{Type: domain.EventUploadChanged})
	})
	return b
}

// ==================== Submission ====================

// Submit inserts a pending chunk and starts its request.
func (b *Board) Submit(ctx context.Context, query string, kind domain.ContentKind) (domain.Chunk, error) {
	var c domain.Chunk
	var err error
	doErr := b.loop.Do(ctx, func() {
		c, err = b.gateway.Submit(query, kind, b.renderer.View().CurrentPage)
		if err == nil {
			b.emit(domain.Event{Type: domain.EventChunkCreated, ChunkID: c.ID})
		}
	})
	return c, errors.Join(doErr, err)
}

// Wait blocks until every outstanding request and upload has settled and
// its result has been applied.
func (b *Board) Wait(ctx context.Context) error {
	if err := b.gateway.Wait(ctx); err != nil {
		return err
	}
	if err := b.upload.Wait(ctx); err != nil {
		return err
	}
	// Results are posted before the goroutines finish; this runs after them.
	return b.loop.Do(ctx, func() {})
}

// AwaitChunk blocks until id's own request has settled and returns the chunk.
// Other requests on the board do not hold it up. A chunk with no request in
// flight is returned at once; a removed chunk yields domain.ErrNotFound.
func (b *Board) AwaitChunk(ctx context.Context, id string) (domain.Chunk, error) {
	if done := b.gateway.Done(id); done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return domain.Chunk{}, ctx.Err()
		}
	}
	return b.Chunk(ctx, id)
}

// onSettle runs on the loop after each generation result.
func (b *Board) onSettle(id string, kind domain.ContentKind, result domain.GenerationResult, applied bool) {
	if !applied {
		return
	}
	b.emit(domain.Event{Type: domain.EventChunkUpdated, ChunkID: id})

	if !b.followFulfilled || kind != domain.KindText || result.Status != domain.StatusFulfilled {
		return
	}
	if result.Reference.IsZero() {
		return
	}
	if _, err := b.selectChunk(b.ctx, id); err != nil {
		logger.Warn("board: follow %s: %v", id, err)
	}
}

// ==================== Reads ====================

// Chunks returns every chunk in insertion order.
func (b *Board) Chunks(ctx context.Context) ([]domain.Chunk, error) {
	var out []domain.Chunk
	err := b.loop.Do(ctx, func() { out = b.chunks.List() })
	return out, err
}

// Chunk returns one chunk.
func (b *Board) Chunk(ctx context.Context, id string) (domain.Chunk, error) {
	var c domain.Chunk
	var ok bool
	if err := b.loop.Do(ctx, func() { c, ok = b.chunks.Get(id) }); err != nil {
		return c, err
	}
	if !ok {
		return c, fmt.Errorf("chunk %s: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

// Nodes returns the graph projection.
func (b *Board) Nodes(ctx context.Context) ([]domain.Node, error) {
	var out []domain.Node
	err := b.loop.Do(ctx, func() { out = b.graph.Nodes() })
	return out, err
}

// Edges returns the links between chunks.
func (b *Board) Edges(ctx context.Context) ([]domain.Edge, error) {
	var out []domain.Edge
	err := b.loop.Do(ctx, func() { out = b.graph.Edges() })
	return out, err
}

// ==================== Graph ====================

// Move sets a chunk's position from a non-drag source.
func (b *Board) Move(ctx context.Context, id string, pos domain.Position) error {
	return b.mutate(ctx, id, func() bool { return b.graph.Move(id, pos) })
}

// BeginDrag hands a chunk's position to the drag.
func (b *Board) BeginDrag(ctx context.Context, id string) error {
	return b.loop.Do(ctx, func() { b.graph.BeginDrag(id) })
}

// Drag writes a drag-reported position.
func (b *Board) Drag(ctx context.Context, id string, pos domain.Position) error {
	return b.mutate(ctx, id, func() bool { return b.graph.Drag(id, pos) })
}

// EndDrag writes the final position and releases the drag.
func (b *Board) EndDrag(ctx context.Context, id string, pos domain.Position) error {
	return b.mutate(ctx, id, func() bool { return b.graph.EndDrag(id, pos) })
}

// Resize grows or shrinks a chunk by one step.
func (b *Board) Resize(ctx context.Context, id string, direction int) error {
	return b.mutate(ctx, id, func() bool { return b.graph.Resize(id, direction) })
}

// AdjustFont changes a chunk's font size.
func (b *Board) AdjustFont(ctx context.Context, id string, delta int) error {
	return b.mutate(ctx, id, func() bool { return b.graph.AdjustFont(id, delta) })
}

// Recolor moves a chunk to the next palette colour. A highlighted chunk is
// re-highlighted in its new colour.
func (b *Board) Recolor(ctx context.Context, id string) error {
	return b.mutate(ctx, id, func() bool {
		if !b.graph.Recolor(id) {
			return false
		}
		if b.highlight.Active() == id {
			b.rehighlight()
		}
		return true
	})
}

// Connect links two chunks.
func (b *Board) Connect(ctx context.Context, source, target string) (domain.Edge, error) {
	var e domain.Edge
	var err error
	doErr := b.loop.Do(ctx, func() {
		e, err = b.graph.Connect(source, target)
		if err == nil {
			b.emit(domain.Event{Type: domain.EventEdgesChanged})
		}
	})
	return e, errors.Join(doErr, err)
}

// Disconnect removes an edge.
func (b *Board) Disconnect(ctx context.Context, edgeID string) error {
	return b.loop.Do(ctx, func() {
		if b.graph.Disconnect(edgeID) {
			b.emit(domain.Event{Type: domain.EventEdgesChanged})
		}
	})
}

// mutate runs fn on the loop and emits ChunkUpdated if it changed something.
func (b *Board) mutate(ctx context.Context, id string, fn func() bool) error {
	return b.loop.Do(ctx, func() {
		if fn() {
			b.emit(domain.Event{Type: domain.EventChunkUpdated, ChunkID: id})
		}
	})
}

// ==================== Selection ====================

// Select clears highlights, then highlights the chunk's reference.
func (b *Board) Select(ctx context.Context, id string) (int, error) {
	var n int
	var err error
	doErr := b.loop.Do(ctx, func() { n, err = b.selectChunk(ctx, id) })
	return n, errors.Join(doErr, err)
}

// Selected returns the selected chunk id.
func (b *Board) Selected(ctx context.Context) (string, error) {
	var id string
	err := b.loop.Do(ctx, func() { id = b.selected })
	return id, err
}

// ClearSelection deselects and clears highlights.
func (b *Board) ClearSelection(ctx context.Context) error {
	return b.loop.Do(ctx, func() {
		b.highlight.ClearHighlights()
		if b.selected != "" {
			b.selected = ""
			b.emit(domain.Event{Type: domain.EventSelectionChange})
		}
	})
}

// selectChunk runs on the loop.
func (b *Board) selectChunk(ctx context.Context, id string) (int, error) {
	c, ok := b.chunks.Get(id)
	if !ok {
		return 0, fmt.Errorf("chunk %s: %w", id, domain.ErrNotFound)
	}
	before := b.renderer.View().CurrentPage

	b.selected = id
	b.emit(domain.Event{Type: domain.EventSelectionChange, ChunkID: id})

	n, err := b.highlight.Highlight(ctx, c)
	if after := b.renderer.View().CurrentPage; after != before {
		b.emit(domain.Event{Type: domain.EventPageChanged, Page: after})
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// rehighlight re-applies the selected chunk's highlight if its reference is
// on the current page. Runs on the loop.
func (b *Board) rehighlight() {
	c, ok := b.chunks.Get(b.selected)
	if !ok {
		return
	}
	if c.Reference.Page != b.renderer.View().CurrentPage {
		return
	}
	if _, err := b.highlight.Highlight(b.ctx, c); err != nil {
		logger.Warn("board: rehighlight %s: %v", c.ID, err)
	}
}

// ==================== Deletion ====================

// RequestDelete marks a chunk for deletion pending confirmation.
// A request for an absent chunk is a no-op.
func (b *Board) RequestDelete(ctx context.Context, id string) error {
	return b.loop.Do(ctx, func() {
		if b.deletion.Request(id) {
			b.emit(domain.Event{Type: domain.EventDeleteRequested, ChunkID: id})
		}
	})
}

// ConfirmDelete removes the pending chunk.
func (b *Board) ConfirmDelete(ctx context.Context) (string, error) {
	var id string
	var err error
	doErr := b.loop.Do(ctx, func() {
		id, err = b.deletion.Confirm()
		if err != nil {
			return
		}
		b.gateway.Forget(id)
		if b.selected == id {
			b.selected = ""
			b.emit(domain.Event{Type: domain.EventSelectionChange})
		}
		b.emit(domain.Event{Type: domain.EventDeleteResolved, ChunkID: id})
		b.emit(domain.Event{Type: domain.EventChunkRemoved, ChunkID: id})
		b.emit(domain.Event{Type: domain.EventEdgesChanged})
	})
	return id, errors.Join(doErr, err)
}

// CancelDelete abandons the pending deletion.
func (b *Board) CancelDelete(ctx context.Context) error {
	return b.loop.Do(ctx, func() {
		if b.deletion.Cancel() {
			b.emit(domain.Event{Type: domain.EventDeleteResolved})
		}
	})
}

// PendingDelete returns the id awaiting confirmation.
func (b *Board) PendingDelete(ctx context.Context) (string, bool, error) {
	var id string
	var ok bool
	err := b.loop.Do(ctx, func() { id, ok = b.deletion.Pending() })
	return id, ok, err
}

// ==================== Document ====================

// OpenDocument opens path, resets the board and uploads the document.
// An upload failure leaves the document open; its status says why.
func (b *Board) OpenDocument(ctx context.Context, path string) (domain.DocumentView, error) {
	var view domain.DocumentView
	var err error
	doErr := b.loop.Do(ctx, func() {
		if b.upload.Status().State == domain.UploadUploading {
			err = domain.ErrUploadInProgress
			return
		}
		view, err = b.renderer.Open(ctx, path)
		if err != nil {
			err = fmt.Errorf("open %s: %w", path, err)
			return
		}
		b.reset()
		logger.Info("board: opened %s (%d pages)", path, view.PageCount)
		b.emit(domain.Event{Type: domain.EventDocumentChanged, Page: view.CurrentPage})

		if upErr := b.upload.Start(ctx, path); upErr != nil {
			logger.Warn("board: upload %s: %v", path, upErr)
		}
	})
	return view, errors.Join(doErr, err)
}

// ReloadDocument re-opens the current document, keeping chunks and edges.
func (b *Board) ReloadDocument(ctx context.Context) error {
	var err error
	doErr := b.loop.Do(ctx, func() {
		prev := b.renderer.View()
		if prev.Path == "" {
			err = domain.ErrNoDocument
			return
		}
		var view domain.DocumentView
		view, err = b.renderer.Open(ctx, prev.Path)
		if err != nil {
			err = fmt.Errorf("reload %s: %w", prev.Path, err)
			return
		}
		if page := view.ClampPage(prev.CurrentPage); page != view.CurrentPage {
			if err = b.renderer.GoToPage(ctx, page); err != nil {
				return
			}
		}
		b.rehighlight()
		logger.Info("board: reloaded %s", prev.Path)
		b.emit(domain.Event{Type: domain.EventDocumentChanged, Page: b.renderer.View().CurrentPage})

		if upErr := b.upload.Start(ctx, prev.Path); upErr != nil {
			logger.Warn("board: re-upload %s: %v", prev.Path, upErr)
		}
	})
	return errors.Join(doErr, err)
}

// View returns the document pagination state.
func (b *Board) View(ctx context.Context) (domain.DocumentView, error) {
	var v domain.DocumentView
	err := b.loop.Do(ctx, func() { v = b.renderer.View() })
	return v, err
}

// SetPage switches the rendered page. Returning to the selected chunk's page
// restores its highlight.
func (b *Board) SetPage(ctx context.Context, page int) error {
	var err error
	doErr := b.loop.Do(ctx, func() {
		view := b.renderer.View()
		if !view.IsOpen() {
			err = domain.ErrNoDocument
			return
		}
		if !view.ValidPage(page) {
			err = fmt.Errorf("page %d of %d: %w", page, view.PageCount, domain.ErrPageOutOfRange)
			return
		}
		if page == view.CurrentPage {
			return
		}
		if err = b.renderer.GoToPage(ctx, page); err != nil {
			return
		}
		b.rehighlight()
		b.emit(domain.Event{Type: domain.EventPageChanged, Page: page})
	})
	return errors.Join(doErr, err)
}

// Surface returns the current page and a snapshot of its runs.
func (b *Board) Surface(ctx context.Context) (int, []domain.TextRun, error) {
	var page int
	var runs []domain.TextRun
	err := b.loop.Do(ctx, func() {
		s := b.renderer.Surface()
		if s == nil {
			return
		}
		page, runs = s.Page(), s.Runs()
	})
	return page, runs, err
}

// UploadStatus returns the upload lifecycle state.
func (b *Board) UploadStatus(ctx context.Context) (domain.UploadStatus, error) {
	var s domain.UploadStatus
	err := b.loop.Do(ctx, func() { s = b.upload.Status() })
	return s, err
}

// reset clears everything tied to the previous document. Runs on the loop.
func (b *Board) reset() {
	b.chunks.Clear()
	b.graph.Reset()
	b.gateway.Reset()
	b.deletion.Cancel()
	b.highlight.ClearHighlights()
	b.upload.Reset()
	b.selected = ""
}

// ==================== Events ====================

// Subscribe returns a channel of board events and an unsubscribe function.
func (b *Board) Subscribe() (<-chan domain.Event, func()) {
	b.subMu.Lock()
	defer b.subMu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan domain.Event, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.subMu.Lock()
			defer b.subMu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

func (b *Board) emit(e domain.Event) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			logger.Debug("board: subscriber lagging, dropped %s", e.Type)
		}
	}
}

// Close abandons outstanding requests and uploads, stops the loop and
// closes every subscription.
func (b *Board) Close() error {
	b.closeOnce.Do(func() {
		b.cancel()
		b.gateway.Close()
		b.upload.Close()
		b.loop.Close()

		b.subMu.Lock()
		for id, ch := range b.subs {
			delete(b.subs, id)
			close(ch)
		}
		b.subMu.Unlock()
	})
	return nil
}
