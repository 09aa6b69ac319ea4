package mcp

import (
	"github.com/custodia-labs/pdfboard/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Board owns chunks, the graph and the open document.
	Board driving.BoardService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Board == nil {
		return ErrMissingBoardService
	}
	return nil
}
