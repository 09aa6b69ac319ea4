// Package mcp provides an MCP (Model Context Protocol) server adapter for pdfboard.
// It lets AI assistants ask questions about the open document and arrange
// the resulting chunks on the board.
package mcp

import "errors"

// ErrMissingBoardService is returned when the board service is not provided.
var ErrMissingBoardService = errors.New("mcp: board service is required")
