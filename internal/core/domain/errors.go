package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyQuery indicates a submission with a blank query.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrUnsupportedKind indicates an unknown content kind.
	ErrUnsupportedKind = errors.New("unsupported content kind")

	// ErrPageOutOfRange indicates a page outside [1, pageCount].
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrNoDocument indicates an operation that needs an open document.
	ErrNoDocument = errors.New("no document open")

	// ErrBackendUnavailable indicates the inference backend is not configured
	// or could not be reached.
	ErrBackendUnavailable = errors.New("inference backend unavailable")

	// ErrNoPendingDelete indicates confirm was called with nothing pending.
	ErrNoPendingDelete = errors.New("no deletion pending")

	// ErrUploadInProgress indicates a second upload while one is running.
	ErrUploadInProgress = errors.New("upload in progress")

	// ErrBoardClosed indicates the board event loop has stopped.
	ErrBoardClosed = errors.New("board closed")
)
