package driving

import (
	"context"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

// BoardService is the coordinating context over chunks, the graph, the
// document and the request lifecycle. Every call is serialised onto a single
// event loop; methods return domain.ErrBoardClosed once Close has run.
//
// Mutations addressing a chunk that no longer exists are no-ops and return nil.
type BoardService interface {
	// Submit inserts a pending chunk for query and starts its request.
	// The returned chunk is the optimistic placeholder.
	Submit(ctx context.Context, query string, kind domain.ContentKind) (domain.Chunk, error)

	// Wait blocks until every outstanding request has settled.
	Wait(ctx context.Context) error

	// AwaitChunk blocks until the request behind id has settled and returns
	// the chunk. It does not wait for other requests.
	AwaitChunk(ctx context.Context, id string) (domain.Chunk, error)

	// Chunks returns every chunk in insertion order.
	Chunks(ctx context.Context) ([]domain.Chunk, error)

	// Chunk returns one chunk or domain.ErrNotFound.
	Chunk(ctx context.Context, id string) (domain.Chunk, error)

	// Nodes returns the graph projection of the chunks.
	Nodes(ctx context.Context) ([]domain.Node, error)

	// Edges returns the links between chunks.
	Edges(ctx context.Context) ([]domain.Edge, error)

	// Move sets a chunk's position from a non-drag source.
	Move(ctx context.Context, id string, pos domain.Position) error

	// BeginDrag hands position ownership of a chunk to the graph surface.
	BeginDrag(ctx context.Context, id string) error

	// Drag writes a drag-reported position back immediately.
	Drag(ctx context.Context, id string, pos domain.Position) error

	// EndDrag writes the final position and releases ownership.
	EndDrag(ctx context.Context, id string, pos domain.Position) error

	// Resize grows (direction > 0) or shrinks (direction < 0) a chunk.
	Resize(ctx context.Context, id string, direction int) error

	// AdjustFont changes a chunk's font size by delta.
	AdjustFont(ctx context.Context, id string, delta int) error

	// Recolor moves a chunk to the next palette colour.
	Recolor(ctx context.Context, id string) error

	// Connect links two existing chunks.
	Connect(ctx context.Context, source, target string) (domain.Edge, error)

	// Disconnect removes an edge.
	Disconnect(ctx context.Context, edgeID string) error

	// Select makes id the selected chunk: clears highlights, then highlights
	// its reference, switching page if needed. Returns the match count.
	Select(ctx context.Context, id string) (int, error)

	// Selected returns the selected chunk id, or "" when nothing is selected.
	Selected(ctx context.Context) (string, error)

	// ClearSelection deselects and clears highlights.
	ClearSelection(ctx context.Context) error

	// RequestDelete marks id for deletion pending confirmation.
	// Absent ids are ignored.
	RequestDelete(ctx context.Context, id string) error

	// ConfirmDelete removes the pending chunk, its edges and all highlights.
	// Returns the removed id, or domain.ErrNoPendingDelete.
	ConfirmDelete(ctx context.Context) (string, error)

	// CancelDelete abandons the pending deletion without mutation.
	CancelDelete(ctx context.Context) error

	// PendingDelete returns the id awaiting confirmation.
	PendingDelete(ctx context.Context) (string, bool, error)

	// OpenDocument resets the board, opens path and uploads it to the backend.
	OpenDocument(ctx context.Context, path string) (domain.DocumentView, error)

	// ReloadDocument re-reads the open document after it changed on disk,
	// keeping chunks and edges.
	ReloadDocument(ctx context.Context) error

	// View returns the document pagination state.
	View(ctx context.Context) (domain.DocumentView, error)

	// SetPage switches the rendered page.
	SetPage(ctx context.Context, page int) error

	// Surface returns the current page number and its text runs.
	Surface(ctx context.Context) (int, []domain.TextRun, error)

	// UploadStatus returns the document upload lifecycle state.
	UploadStatus(ctx context.Context) (domain.UploadStatus, error)

	// Subscribe returns a channel of board events and a function that
	// unsubscribes. Slow subscribers miss events rather than block the board.
	Subscribe() (<-chan domain.Event, func())

	// Close abandons outstanding requests and stops the event loop.
	Close() error
}
