// Package tui provides an interactive terminal board for pdfboard.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/pdfboard/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	// Board is the board of the open document.
	Board driving.BoardService
}

// NewPorts creates a new Ports aggregate.
func NewPorts(board driving.BoardService) *Ports {
	return &Ports{Board: board}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Board == nil {
		return ErrMissingBoardService
	}
	return nil
}
