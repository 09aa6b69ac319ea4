package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfboard/internal/adapters/driven/renderer"
	"github.com/custodia-labs/pdfboard/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
	"github.com/custodia-labs/pdfboard/internal/core/services"
)

// mockBackend is a mock implementation of driven.InferenceBackend.
// Queries with a gate block until it is closed.
type mockBackend struct {
	answers map[string]domain.TextAnswer
	gates   map[string]chan struct{}
	err     error
}

func (m *mockBackend) ProcessQuery(ctx context.Context, _, query string) (domain.TextAnswer, error) {
	if gate, ok := m.gates[query]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.TextAnswer{}, ctx.Err()
		}
	}
	if m.err != nil {
		return domain.TextAnswer{}, m.err
	}
	if ans, ok := m.answers[query]; ok {
		return ans, nil
	}
	return domain.TextAnswer{Answer: "answer to " + query}, nil
}

func (m *mockBackend) GenerateImage(_ context.Context, prompt string) (domain.ImageAnswer, error) {
	return domain.ImageAnswer{URL: "https://img.example.com/1.png", OriginalPrompt: prompt}, m.err
}

func (m *mockBackend) UploadDocument(context.Context, driven.UploadedDocument) error { return nil }

func (m *mockBackend) Ping(context.Context) error { return nil }

func (m *mockBackend) Name() string { return "mock" }

// newTestBoard returns a board with a two page document open.
func newTestBoard(t *testing.T, backend *mockBackend) *services.Board {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o600))

	loader := renderer.NewStaticLoader()
	loader.Add(path,
		renderer.Page{"Abstract", "We define the kernel."},
		renderer.Page{"The kernel is defined on page two."},
	)

	board := services.NewBoard(
		memory.NewChunkStore(), memory.NewEdgeStore(), backend, renderer.New(loader),
		nil, nil, nil, domain.GenerationSettings{FollowFulfilled: true},
	)
	t.Cleanup(func() { _ = board.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := board.OpenDocument(ctx, path)
	require.NoError(t, err)
	require.NoError(t, board.Wait(ctx))
	return board
}

func newTestServer(t *testing.T, backend *mockBackend) (*Server, *services.Board) {
	t.Helper()
	board := newTestBoard(t, backend)
	server, err := NewServer(&Ports{Board: board})
	require.NoError(t, err)
	return server, board
}
