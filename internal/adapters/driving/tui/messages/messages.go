// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

// Mode identifies what keys currently drive.
type Mode int

const (
	// ModeBoard navigates chunks and applies chunk actions.
	ModeBoard Mode = iota
	// ModeInput types a query.
	ModeInput
	// ModeLink picks the target of a new edge.
	ModeLink
	// ModeConfirmDelete waits for the delete prompt to be answered.
	ModeConfirmDelete
	// ModeHelp shows every keybinding.
	ModeHelp
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeBoard:
		return "board"
	case ModeInput:
		return "input"
	case ModeLink:
		return "link"
	case ModeConfirmDelete:
		return "confirm_delete"
	case ModeHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Snapshot is everything the TUI renders, read from the board in one go.
type Snapshot struct {
	Nodes    []domain.Node
	Edges    []domain.Edge
	Selected string
	Pending  string
	View     domain.DocumentView
	Runs     []domain.TextRun
	Upload   domain.UploadStatus
}

// BoardLoaded carries a fresh snapshot of the board.
type BoardLoaded struct {
	Snapshot Snapshot
	Err      error
}

// BoardChanged is sent when the board emits an event.
type BoardChanged struct {
	Event domain.Event
}

// QuerySubmitted signals a query was accepted and a placeholder inserted.
type QuerySubmitted struct {
	Chunk domain.Chunk
	Err   error
}

// ChunkSelected reports how many passages a selection highlighted.
type ChunkSelected struct {
	ChunkID string
	Matches int
	Err     error
}

// ActionCompleted reports the outcome of a board mutation.
type ActionCompleted struct {
	Action string
	Err    error
}

// ModeChanged is sent when switching modes.
type ModeChanged struct {
	Mode Mode
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
