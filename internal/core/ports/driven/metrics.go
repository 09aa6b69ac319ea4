package driven

import (
	"time"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

// GenerationMetrics observes the request lifecycle.
type GenerationMetrics interface {
	// Submitted counts a request entering Pending.
	Submitted(kind domain.ContentKind)

	// Settled counts a request reaching a terminal state and its latency.
	Settled(kind domain.ContentKind, state domain.GenerationState, elapsed time.Duration)

	// Dropped counts a result that arrived for a chunk no longer on the board.
	Dropped(kind domain.ContentKind)
}
