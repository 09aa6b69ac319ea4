package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfboard/internal/adapters/driven/renderer"
	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
)

// mockBackend implements driven.InferenceBackend for testing.
// Queries registered with hold block until released.
type mockBackend struct {
	mu        sync.Mutex
	answers   map[string]domain.TextAnswer
	images    map[string]string
	gates     map[string]chan struct{}
	queryErr  error
	imageErr  error
	uploadErr error
	uploads   []driven.UploadedDocument
	queries   []string
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		answers: make(map[string]domain.TextAnswer),
		images:  make(map[string]string),
		gates:   make(map[string]chan struct{}),
	}
}

func (m *mockBackend) answer(query string, ans domain.TextAnswer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers[query] = ans
}

func (m *mockBackend) hold(query string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gates[query] = make(chan struct{})
}

func (m *mockBackend) release(query string) {
	m.mu.Lock()
	gate := m.gates[query]
	delete(m.gates, query)
	m.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

func (m *mockBackend) wait(ctx context.Context, query string) error {
	m.mu.Lock()
	gate := m.gates[query]
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockBackend) ProcessQuery(ctx context.Context, _, query string) (domain.TextAnswer, error) {
	if err := m.wait(ctx, query); err != nil {
		return domain.TextAnswer{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return domain.TextAnswer{}, m.queryErr
	}
	if ans, ok := m.answers[query]; ok {
		return ans, nil
	}
	return domain.TextAnswer{Answer: "answer to " + query}, nil
}

func (m *mockBackend) GenerateImage(ctx context.Context, prompt string) (domain.ImageAnswer, error) {
	if err := m.wait(ctx, prompt); err != nil {
		return domain.ImageAnswer{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.imageErr != nil {
		return domain.ImageAnswer{}, m.imageErr
	}
	url, ok := m.images[prompt]
	if !ok {
		url = "https://images.example.com/generated.png"
	}
	return domain.ImageAnswer{URL: url, OriginalPrompt: prompt}, nil
}

func (m *mockBackend) UploadDocument(_ context.Context, doc driven.UploadedDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = append(m.uploads, doc)
	return m.uploadErr
}

func (m *mockBackend) Ping(context.Context) error { return nil }

func (m *mockBackend) Name() string { return "mock" }

func (m *mockBackend) uploaded() []driven.UploadedDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]driven.UploadedDocument(nil), m.uploads...)
}

// mockJournal implements driven.GenerationJournal for testing.
type mockJournal struct {
	mu      sync.Mutex
	entries []domain.JournalEntry
}

func (j *mockJournal) Record(_ context.Context, e domain.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return nil
}

func (j *mockJournal) List(_ context.Context, chunkID string) ([]domain.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []domain.JournalEntry
	for _, e := range j.entries {
		if chunkID == "" || e.ChunkID == chunkID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (j *mockJournal) Close() error { return nil }

// mockMetrics implements driven.GenerationMetrics for testing.
type mockMetrics struct {
	mu        sync.Mutex
	submitted int
	settled   map[domain.GenerationState]int
	dropped   int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{settled: make(map[domain.GenerationState]int)}
}

func (m *mockMetrics) Submitted(domain.ContentKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted++
}

func (m *mockMetrics) Settled(_ domain.ContentKind, state domain.GenerationState, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settled[state]++
}

func (m *mockMetrics) Dropped(domain.ContentKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped++
}

// syncPoster runs posted work inline. Used by components that are normally
// driven from the loop.
type syncPoster struct{}

func (syncPoster) Post(fn func()) bool {
	fn()
	return true
}

// closedPoster rejects all work, as a stopped loop does.
type closedPoster struct{}

func (closedPoster) Post(func()) bool { return false }

var errBackendDown = errors.New("backend down")

// testPages is a three page document. Page 3 holds the definition the
// backend points at in most tests.
var testPages = []renderer.Page{
	{"Introduction", "We study the behaviour of X."},
	{"Method", "The approach is iterative."},
	{"Results", "Formally, X is defined as the fixed point.", "Hence X is defined uniquely."},
}

// writeDocument creates a file on disk, so uploads can read it, and a
// renderer that serves testPages for it.
func writeDocument(t *testing.T) (string, *renderer.Renderer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0o600))

	loader := renderer.NewStaticLoader()
	loader.Add(path, testPages...)
	return path, renderer.New(loader)
}

// openDocument returns a renderer with the test document open on page 1.
func openDocument(t *testing.T) (string, *renderer.Renderer) {
	t.Helper()
	path, r := writeDocument(t)
	_, err := r.Open(context.Background(), path)
	require.NoError(t, err)
	return path, r
}
