package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
	"github.com/custodia-labs/pdfboard/internal/logger"
)

var errEmptyAnswer = errors.New("backend returned an empty answer")

// SettleFunc is called on the loop after a request settles.
// applied is false when the chunk was removed before the result arrived.
type SettleFunc func(id string, kind domain.ContentKind, result domain.GenerationResult, applied bool)

// GenerationGateway manages the asynchronous request that fulfills each
// submitted chunk. Every submission gets its own chunk and its own request;
// nothing is cancelled or coalesced. Results are routed back by chunk id
// through the Poster, so fulfillment order is unconstrained.
type GenerationGateway struct {
	chunks  driven.ChunkStore
	backend driven.InferenceBackend
	poster  Poster
	journal driven.GenerationJournal
	metrics driven.GenerationMetrics
	limiter *rate.Limiter

	ctx     context.Context
	cancel  context.CancelFunc
	running *inflight

	mu     sync.RWMutex
	states map[string]domain.GenerationState
	done   map[string]chan struct{}

	onSettle SettleFunc
}

// NewGenerationGateway creates a gateway. journal and metrics are optional.
// A zero RateLimit leaves submissions unbounded; otherwise requests wait for
// a token before being sent.
func NewGenerationGateway(
	chunks driven.ChunkStore,
	backend driven.InferenceBackend,
	poster Poster,
	journal driven.GenerationJournal,
	metrics driven.GenerationMetrics,
	settings domain.GenerationSettings,
) *GenerationGateway {
	ctx, cancel := context.WithCancel(context.Background())
	g := &GenerationGateway{
		chunks:  chunks,
		backend: backend,
		poster:  poster,
		journal: journal,
		metrics: metrics,
		ctx:     ctx,
		cancel:  cancel,
		running: newInflight(),
		states:  make(map[string]domain.GenerationState),
		done:    make(map[string]chan struct{}),
	}
	if settings.RateLimit > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(settings.RateLimit), max(settings.Burst, 1))
	}
	return g
}

// OnSettle registers the callback run on the loop after each result.
func (g *GenerationGateway) OnSettle(fn SettleFunc) {
	g.onSettle = fn
}

// Submit inserts a pending placeholder chunk and starts its request.
// page is the page the user is looking at; image chunks are anchored to it.
func (g *GenerationGateway) Submit(query string, kind domain.ContentKind, page int) (domain.Chunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Chunk{}, domain.ErrEmptyQuery
	}
	if !kind.IsValid() {
		return domain.Chunk{}, domain.ErrUnsupportedKind
	}
	if g.backend == nil {
		return domain.Chunk{}, domain.ErrBackendUnavailable
	}
	if !g.running.start() {
		return domain.Chunk{}, domain.ErrBoardClosed
	}

	draft := domain.NewPendingDraft(query, kind, g.chunks.Len(), page)
	id := g.chunks.Create(draft)
	g.mu.Lock()
	g.states[id] = domain.GenerationPending
	g.done[id] = make(chan struct{})
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.Submitted(kind)
	}
	logger.Info("generation: submitted %s chunk %s", kind, id)

	go g.run(id, query, kind)

	c, _ := g.chunks.Get(id)
	return c, nil
}

// State returns the lifecycle state of id's request.
// Unknown ids, including removed chunks, are Idle.
func (g *GenerationGateway) State(id string) domain.GenerationState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if s, ok := g.states[id]; ok {
		return s
	}
	return domain.GenerationIdle
}

// Outstanding returns the number of requests still pending.
func (g *GenerationGateway) Outstanding() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, s := range g.states {
		if s == domain.GenerationPending {
			n++
		}
	}
	return n
}

// Forget drops lifecycle tracking for a removed chunk.
func (g *GenerationGateway) Forget(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.states, id)
}

// Reset drops lifecycle tracking for every chunk.
func (g *GenerationGateway) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.states = make(map[string]domain.GenerationState)
}

// Done returns a channel closed once id's result has been applied or
// dropped on the loop. It returns nil when id has no request in flight.
func (g *GenerationGateway) Done(id string) <-chan struct{} {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if ch, ok := g.done[id]; ok {
		return ch
	}
	return nil
}

// Wait blocks until no request is running. Submissions made while waiting
// extend the wait. Results may still be queued on the loop when Wait returns.
func (g *GenerationGateway) Wait(ctx context.Context) error {
	return g.running.wait(ctx)
}

// Close abandons outstanding requests and waits for their goroutines.
// Later submissions fail with domain.ErrBoardClosed.
func (g *GenerationGateway) Close() {
	g.cancel()
	g.running.close()
}

func (g *GenerationGateway) run(id, query string, kind domain.ContentKind) {
	defer g.running.finish()
	start := time.Now()

	g.record(id, kind, query, domain.GenerationPending, "")

	result := g.request(id, query, kind)
	elapsed := time.Since(start)

	state := domain.GenerationFulfilled
	detail := ""
	if result.Status == domain.StatusFailed {
		state = domain.GenerationFailed
		detail = result.Answer
	}
	g.record(id, kind, query, state, detail)

	if !g.poster.Post(func() { g.settle(id, kind, state, result, elapsed) }) {
		logger.Debug("generation: loop closed, result for %s discarded", id)
		g.release(id)
	}
}

func (g *GenerationGateway) request(id, query string, kind domain.ContentKind) domain.GenerationResult {
	if g.limiter != nil {
		if err := g.limiter.Wait(g.ctx); err != nil {
			return domain.FailedResult(fmt.Errorf("rate limiter: %w", err))
		}
	}

	switch kind {
	case domain.KindImage:
		ans, err := g.backend.GenerateImage(g.ctx, query)
		if err != nil {
			return domain.FailedResult(err)
		}
		if strings.TrimSpace(ans.URL) == "" {
			return domain.FailedResult(errEmptyAnswer)
		}
		return domain.GenerationResult{Answer: ans.URL, Status: domain.StatusFulfilled}

	default:
		ans, err := g.backend.ProcessQuery(g.ctx, id, query)
		if err != nil {
			return domain.FailedResult(err)
		}
		if strings.TrimSpace(ans.Answer) == "" {
			return domain.FailedResult(errEmptyAnswer)
		}
		result := domain.GenerationResult{Answer: ans.Answer, Status: domain.StatusFulfilled}
		if ans.Page >= 1 {
			result.Reference = domain.Reference{Page: ans.Page, Text: ans.Text}
		} else {
			logger.Warn("generation: answer for %s has no page reference", id)
		}
		return result
	}
}

// settle runs on the loop.
func (g *GenerationGateway) settle(
	id string,
	kind domain.ContentKind,
	state domain.GenerationState,
	result domain.GenerationResult,
	elapsed time.Duration,
) {
	applied := false
	if g.State(id).CanTransition(state) {
		applied = g.chunks.Patch(id, result.Patch())
	}

	if applied {
		g.setState(id, state)
		if state == domain.GenerationFailed {
			logger.Warn("generation: chunk %s failed: %s", id, result.Answer)
		} else {
			logger.Debug("generation: chunk %s fulfilled in %s", id, elapsed)
		}
	} else {
		g.Forget(id)
		logger.Debug("generation: chunk %s gone, dropped late result", id)
		if g.metrics != nil {
			g.metrics.Dropped(kind)
		}
	}

	if g.metrics != nil {
		g.metrics.Settled(kind, state, elapsed)
	}
	if g.onSettle != nil {
		g.onSettle(id, kind, result, applied)
	}
	g.release(id)
}

// release wakes anyone waiting on id's result.
func (g *GenerationGateway) release(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ch, ok := g.done[id]; ok {
		delete(g.done, id)
		close(ch)
	}
}

func (g *GenerationGateway) setState(id string, s domain.GenerationState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.states[id] = s
}

func (g *GenerationGateway) record(id string, kind domain.ContentKind, query string, state domain.GenerationState, detail string) {
	if g.journal == nil {
		return
	}
	entry := domain.JournalEntry{
		ChunkID:   id,
		Kind:      kind,
		Query:     query,
		State:     state,
		Detail:    detail,
		Timestamp: time.Now(),
	}
	// The journal outlives a cancelled request; record with a fresh context.
	if err := g.journal.Record(context.Background(), entry); err != nil {
		logger.Warn("generation: journal: %v", err)
	}
}
