package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfboard/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

type boardFixture struct {
	board   *Board
	backend *mockBackend
	path    string
}

func newBoardFixture(t *testing.T, settings domain.GenerationSettings) *boardFixture {
	t.Helper()
	path, r := writeDocument(t)
	backend := newMockBackend()
	b := NewBoard(memory.NewChunkStore(), memory.NewEdgeStore(), backend, r, nil, nil, nil, settings)
	t.Cleanup(func() { _ = b.Close() })

	f := &boardFixture{board: b, backend: backend, path: path}
	_, err := b.OpenDocument(context.Background(), path)
	require.NoError(t, err)
	f.wait(t)
	return f
}

func (f *boardFixture) wait(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.board.Wait(ctx))
}

func following() domain.GenerationSettings {
	return domain.GenerationSettings{FollowFulfilled: true}
}

func highlightedRuns(t *testing.T, b *Board) []domain.TextRun {
	t.Helper()
	_, runs, err := b.Surface(context.Background())
	require.NoError(t, err)
	var out []domain.TextRun
	for _, r := range runs {
		if r.Highlighted() {
			out = append(out, r)
		}
	}
	return out
}

func TestBoard_SubmitFulfilledFollowsReference(t *testing.T) {
	f := newBoardFixture(t, following())
	ctx := context.Background()
	f.backend.answer("What is X?", domain.TextAnswer{Answer: "X is Y", Page: 3, Text: "X is defined"})
	f.backend.hold("What is X?")

	c, err := f.board.Submit(ctx, "What is X?", domain.KindText)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, c.Content.Status)

	chunks, err := f.board.Chunks(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 1, "the placeholder appears immediately")

	f.backend.release("What is X?")
	f.wait(t)

	got, err := f.board.Chunk(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, got.Content.Status)
	assert.Equal(t, "X is Y", got.Content.Answer)

	view, err := f.board.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, view.CurrentPage)

	selected, err := f.board.Selected(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.ID, selected)

	marked := highlightedRuns(t, f.board)
	require.Len(t, marked, 2)
	assert.Contains(t, marked[0].Markup, `<mark style="background: `+got.Style.Color+`;">X is defined</mark>`)
}

func TestBoard_SubmitWithoutFollow(t *testing.T) {
	f := newBoardFixture(t, domain.GenerationSettings{})
	ctx := context.Background()
	f.backend.answer("q", domain.TextAnswer{Answer: "a", Page: 3, Text: "X is defined"})

	_, err := f.board.Submit(ctx, "q", domain.KindText)
	require.NoError(t, err)
	f.wait(t)

	view, _ := f.board.View(ctx)
	assert.Equal(t, 1, view.CurrentPage)
	assert.Empty(t, highlightedRuns(t, f.board))
}

func TestBoard_SubmitErrors(t *testing.T) {
	f := newBoardFixture(t, following())
	ctx := context.Background()

	_, err := f.board.Submit(ctx, " ", domain.KindText)
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)

	_, err = f.board.Submit(ctx, "q", "audio")
	assert.ErrorIs(t, err, domain.ErrUnsupportedKind)

	chunks, _ := f.board.Chunks(ctx)
	assert.Empty(t, chunks)
}

func TestBoard_ImageAnchoredToCurrentPage(t *testing.T) {
	f := newBoardFixture(t, following())
	ctx := context.Background()
	require.NoError(t, f.board.SetPage(ctx, 2))

	c, err := f.board.Submit(ctx, "a diagram of the method", domain.KindImage)
	require.NoError(t, err)
	f.wait(t)

	got, err := f.board.Chunk(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, got.Content.Status)
	assert.Equal(t, 2, got.Reference.Page)

	// Image chunks are not followed.
	selected, _ := f.board.Selected(ctx)
	assert.Empty(t, selected)
}

func TestBoard_FulfilledBeforeConfirmDelete(t *testing.T) {
	f := newBoardFixture(t, domain.GenerationSettings{})
	ctx := context.Background()
	f.backend.hold("q")

	c, err := f.board.Submit(ctx, "q", domain.KindText)
	require.NoError(t, err)
	require.NoError(t, f.board.RequestDelete(ctx, c.ID))

	// The result lands while the delete is pending; the chunk still exists.
	f.backend.release("q")
	f.wait(t)
	got, err := f.board.Chunk(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, got.Content.Status)

	id, err := f.board.ConfirmDelete(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.ID, id)

	chunks, _ := f.board.Chunks(ctx)
	assert.Empty(t, chunks)
}

func TestBoard_LateResultAfterConfirmDelete(t *testing.T) {
	f := newBoardFixture(t, following())
	ctx := context.Background()
	f.backend.answer("q", domain.TextAnswer{Answer: "late", Page: 3, Text: "X is defined"})
	f.backend.hold("q")

	c, err := f.board.Submit(ctx, "q", domain.KindText)
	require.NoError(t, err)
	require.NoError(t, f.board.RequestDelete(ctx, c.ID))
	_, err = f.board.ConfirmDelete(ctx)
	require.NoError(t, err)

	f.backend.release("q")
	f.wait(t)

	chunks, err := f.board.Chunks(ctx)
	require.NoError(t, err)
	assert.Empty(t, chunks, "late result is a no-op")

	view, _ := f.board.View(ctx)
	assert.Equal(t, 1, view.CurrentPage, "a dropped result is not followed")
	assert.Empty(t, highlightedRuns(t, f.board))
}

func TestBoard_DeleteCascadesAndClearsSelection(t *testing.T) {
	f := newBoardFixture(t, domain.GenerationSettings{})
	ctx := context.Background()
	f.backend.answer("a", domain.TextAnswer{Answer: "A", Page: 1, Text: "Introduction"})

	a, err := f.board.Submit(ctx, "a", domain.KindText)
	require.NoError(t, err)
	b, err := f.board.Submit(ctx, "b", domain.KindText)
	require.NoError(t, err)
	f.wait(t)

	_, err = f.board.Connect(ctx, a.ID, b.ID)
	require.NoError(t, err)
	n, err := f.board.Select(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, f.board.RequestDelete(ctx, a.ID))
	pending, ok, err := f.board.PendingDelete(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, a.ID, pending)

	_, err = f.board.ConfirmDelete(ctx)
	require.NoError(t, err)

	edges, _ := f.board.Edges(ctx)
	assert.Empty(t, edges)
	selected, _ := f.board.Selected(ctx)
	assert.Empty(t, selected)
	assert.Empty(t, highlightedRuns(t, f.board))

	nodes, _ := f.board.Nodes(ctx)
	require.Len(t, nodes, 1)
	assert.Equal(t, "1", nodes[0].Label)
}

func TestBoard_CancelDelete(t *testing.T) {
	f := newBoardFixture(t, domain.GenerationSettings{})
	ctx := context.Background()

	c, err := f.board.Submit(ctx, "q", domain.KindText)
	require.NoError(t, err)
	f.wait(t)

	require.NoError(t, f.board.RequestDelete(ctx, c.ID))
	require.NoError(t, f.board.CancelDelete(ctx))

	_, ok, _ := f.board.PendingDelete(ctx)
	assert.False(t, ok)
	_, err = f.board.Chunk(ctx, c.ID)
	assert.NoError(t, err)

	_, err = f.board.ConfirmDelete(ctx)
	assert.ErrorIs(t, err, domain.ErrNoPendingDelete)
	assert.NoError(t, f.board.RequestDelete(ctx, "missing"), "absent ids are ignored")
	_, pending, err := f.board.PendingDelete(ctx)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestBoard_SetPageRestoresHighlight(t *testing.T) {
	f := newBoardFixture(t, following())
	ctx := context.Background()
	f.backend.answer("q", domain.TextAnswer{Answer: "a", Page: 3, Text: "X is defined"})

	c, err := f.board.Submit(ctx, "q", domain.KindText)
	require.NoError(t, err)
	f.wait(t)
	require.Len(t, highlightedRuns(t, f.board), 2)

	require.NoError(t, f.board.SetPage(ctx, 1))
	assert.Empty(t, highlightedRuns(t, f.board), "other pages render unhighlighted")

	require.NoError(t, f.board.SetPage(ctx, 3))
	assert.Len(t, highlightedRuns(t, f.board), 2, "returning to the page restores the highlight")

	// Recolor re-applies the highlight in the new colour.
	require.NoError(t, f.board.Recolor(ctx, c.ID))
	got, _ := f.board.Chunk(ctx, c.ID)
	marked := highlightedRuns(t, f.board)
	require.NotEmpty(t, marked)
	assert.Contains(t, marked[0].Markup, got.Style.Color)

	require.NoError(t, f.board.ClearSelection(ctx))
	assert.Empty(t, highlightedRuns(t, f.board))
}

func TestBoard_SetPageErrors(t *testing.T) {
	f := newBoardFixture(t, following())
	ctx := context.Background()

	assert.ErrorIs(t, f.board.SetPage(ctx, 0), domain.ErrPageOutOfRange)
	assert.ErrorIs(t, f.board.SetPage(ctx, 4), domain.ErrPageOutOfRange)

	view, _ := f.board.View(ctx)
	assert.Equal(t, 1, view.CurrentPage)
}

func TestBoard_SelectMissing(t *testing.T) {
	f := newBoardFixture(t, following())
	_, err := f.board.Select(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBoard_DragOwnsPosition(t *testing.T) {
	f := newBoardFixture(t, following())
	ctx := context.Background()

	c, err := f.board.Submit(ctx, "q", domain.KindText)
	require.NoError(t, err)

	require.NoError(t, f.board.BeginDrag(ctx, c.ID))
	require.NoError(t, f.board.Drag(ctx, c.ID, domain.Position{X: 5, Y: 5}))
	require.NoError(t, f.board.Move(ctx, c.ID, domain.Position{X: 500, Y: 500}))
	require.NoError(t, f.board.EndDrag(ctx, c.ID, domain.Position{X: 7, Y: 8}))

	got, _ := f.board.Chunk(ctx, c.ID)
	assert.Equal(t, domain.Position{X: 7, Y: 8}, got.Geometry.Position)

	require.NoError(t, f.board.Resize(ctx, c.ID, 1))
	require.NoError(t, f.board.AdjustFont(ctx, c.ID, domain.FontStep))
	got, _ = f.board.Chunk(ctx, c.ID)
	assert.Equal(t, domain.Position{X: 7, Y: 8}, got.Geometry.Position)
	assert.Equal(t, domain.DefaultFontSize+domain.FontStep, got.Style.FontSize)

	// Absent ids are no-ops.
	assert.NoError(t, f.board.Move(ctx, "missing", domain.Position{}))
}

func TestBoard_OpenDocumentResets(t *testing.T) {
	f := newBoardFixture(t, following())
	ctx := context.Background()

	a, err := f.board.Submit(ctx, "a", domain.KindText)
	require.NoError(t, err)
	b, err := f.board.Submit(ctx, "b", domain.KindText)
	require.NoError(t, err)
	f.wait(t)
	_, err = f.board.Connect(ctx, a.ID, b.ID)
	require.NoError(t, err)

	view, err := f.board.OpenDocument(ctx, f.path)
	require.NoError(t, err)
	assert.Equal(t, 3, view.PageCount)
	f.wait(t)

	chunks, _ := f.board.Chunks(ctx)
	assert.Empty(t, chunks)
	edges, _ := f.board.Edges(ctx)
	assert.Empty(t, edges)

	status, err := f.board.UploadStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.UploadReady, status.State)
	assert.Len(t, f.backend.uploaded(), 2)
}

func TestBoard_OpenDocumentMissing(t *testing.T) {
	f := newBoardFixture(t, following())
	_, err := f.board.OpenDocument(context.Background(), "/nowhere/else.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	view, _ := f.board.View(context.Background())
	assert.Equal(t, f.path, view.Path, "the open document is kept")
}

func TestBoard_ReloadKeepsChunksAndPage(t *testing.T) {
	f := newBoardFixture(t, following())
	ctx := context.Background()

	_, err := f.board.Submit(ctx, "q", domain.KindText)
	require.NoError(t, err)
	f.wait(t)
	require.NoError(t, f.board.SetPage(ctx, 2))

	require.NoError(t, f.board.ReloadDocument(ctx))
	f.wait(t)

	view, _ := f.board.View(ctx)
	assert.Equal(t, 2, view.CurrentPage)
	chunks, _ := f.board.Chunks(ctx)
	assert.Len(t, chunks, 1)
}

func TestBoard_Events(t *testing.T) {
	f := newBoardFixture(t, domain.GenerationSettings{})
	ctx := context.Background()
	events, unsubscribe := f.board.Subscribe()
	defer unsubscribe()

	c, err := f.board.Submit(ctx, "q", domain.KindText)
	require.NoError(t, err)
	f.wait(t)

	want := []domain.Event{
		{Type: domain.EventChunkCreated, ChunkID: c.ID},
		{Type: domain.EventChunkUpdated, ChunkID: c.ID},
	}
	for _, w := range want {
		select {
		case e := <-events:
			assert.Equal(t, w, e)
		case <-time.After(time.Second):
			t.Fatalf("missing event %s", w.Type)
		}
	}
}

func TestBoard_Close(t *testing.T) {
	f := newBoardFixture(t, following())
	ctx := context.Background()
	events, _ := f.board.Subscribe()
	f.backend.hold("q")

	_, err := f.board.Submit(ctx, "q", domain.KindText)
	require.NoError(t, err)

	require.NoError(t, f.board.Close())

	// Drain and observe the channel close.
	for range events {
	}
	_, err = f.board.Chunks(ctx)
	assert.ErrorIs(t, err, domain.ErrBoardClosed)
	assert.NoError(t, f.board.Close())
}

func TestBoard_SubmitWhileWaiting(t *testing.T) {
	f := newBoardFixture(t, domain.GenerationSettings{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 8*20)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				if _, err := f.board.Submit(ctx, fmt.Sprintf("q%d-%d", w, i), domain.KindText); err != nil {
					errs <- err
					return
				}
				if err := f.board.Wait(ctx); err != nil {
					errs <- err
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	chunks, err := f.board.Chunks(ctx)
	require.NoError(t, err)
	assert.Len(t, chunks, 160)
	for _, c := range chunks {
		assert.Equal(t, domain.StatusFulfilled, c.Content.Status)
	}
}

func TestBoard_AwaitChunkIgnoresOtherRequests(t *testing.T) {
	f := newBoardFixture(t, domain.GenerationSettings{})
	ctx := context.Background()
	f.backend.hold("slow")
	f.backend.hold("fast")

	slow, err := f.board.Submit(ctx, "slow", domain.KindText)
	require.NoError(t, err)
	fast, err := f.board.Submit(ctx, "fast", domain.KindText)
	require.NoError(t, err)

	f.backend.release("fast")
	awaitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	got, err := f.board.AwaitChunk(awaitCtx, fast.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, got.Content.Status)
	assert.Equal(t, "answer to fast", got.Content.Answer)

	held, err := f.board.Chunk(ctx, slow.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, held.Content.Status)

	shortCtx, shortCancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer shortCancel()
	_, err = f.board.AwaitChunk(shortCtx, slow.ID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	f.backend.release("slow")
	got, err = f.board.AwaitChunk(awaitCtx, slow.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, got.Content.Status)
}

func TestBoard_AwaitChunkSettled(t *testing.T) {
	f := newBoardFixture(t, domain.GenerationSettings{})
	ctx := context.Background()

	c, err := f.board.Submit(ctx, "q", domain.KindText)
	require.NoError(t, err)
	f.wait(t)

	got, err := f.board.AwaitChunk(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, got.Content.Status)

	_, err = f.board.AwaitChunk(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBoard_AwaitChunkDeletedWhilePending(t *testing.T) {
	f := newBoardFixture(t, domain.GenerationSettings{})
	ctx := context.Background()
	f.backend.hold("q")

	c, err := f.board.Submit(ctx, "q", domain.KindText)
	require.NoError(t, err)
	require.NoError(t, f.board.RequestDelete(ctx, c.ID))
	_, err = f.board.ConfirmDelete(ctx)
	require.NoError(t, err)

	f.backend.release("q")
	awaitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err = f.board.AwaitChunk(awaitCtx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBoard_SubmitAfterClose(t *testing.T) {
	f := newBoardFixture(t, domain.GenerationSettings{})
	require.NoError(t, f.board.Close())

	_, err := f.board.Submit(context.Background(), "q", domain.KindText)
	assert.ErrorIs(t, err, domain.ErrBoardClosed)
}
