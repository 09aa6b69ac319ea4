package domain

import "time"

// GenerationState is the lifecycle of one submission's request.
type GenerationState string

// Generation lifecycle states.
const (
	GenerationIdle      GenerationState = "idle"
	GenerationPending   GenerationState = "pending"
	GenerationFulfilled GenerationState = "fulfilled"
	GenerationFailed    GenerationState = "failed"
)

// String returns the string representation.
func (s GenerationState) String() string {
	return string(s)
}

// IsTerminal returns true once the request has settled.
func (s GenerationState) IsTerminal() bool {
	return s == GenerationFulfilled || s == GenerationFailed
}

// CanTransition reports whether the lifecycle allows moving from s to next.
// Idle -> Pending -> {Fulfilled | Failed}; settled states are final.
func (s GenerationState) CanTransition(next GenerationState) bool {
	switch s {
	case GenerationIdle:
		return next == GenerationPending
	case GenerationPending:
		return next == GenerationFulfilled || next == GenerationFailed
	default:
		return false
	}
}

// ChunkStatus maps a settled generation state to the chunk status it produces.
func (s GenerationState) ChunkStatus() Status {
	switch s {
	case GenerationFulfilled:
		return StatusFulfilled
	case GenerationFailed:
		return StatusFailed
	default:
		return StatusPending
	}
}

// TextAnswer is what the backend returns for a text query.
type TextAnswer struct {
	Answer string
	Page   int
	Text   string
}

// ImageAnswer is what the backend returns for an image query.
type ImageAnswer struct {
	URL             string
	OriginalPrompt  string
	OptimizedPrompt string
}

// GenerationResult is the patch contract both kinds resolve to.
type GenerationResult struct {
	Answer    string
	Reference Reference
	Status    Status
}

// Patch converts the result into a chunk patch.
func (r GenerationResult) Patch() ChunkPatch {
	answer := r.Answer
	status := r.Status
	p := ChunkPatch{Answer: &answer, Status: &status}
	if !r.Reference.IsZero() {
		ref := r.Reference
		p.Reference = &ref
	}
	return p
}

// FailedResult builds the result of a rejected request.
func FailedResult(err error) GenerationResult {
	return GenerationResult{
		Answer: FailedAnswerPrefix + err.Error(),
		Status: StatusFailed,
	}
}

// JournalEntry is one recorded lifecycle event of a request.
type JournalEntry struct {
	ChunkID   string
	Kind      ContentKind
	Query     string
	State     GenerationState
	Detail    string
	Timestamp time.Time
}
