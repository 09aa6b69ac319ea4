// Package domain defines the core business entities for pdfboard.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: a positioned, styled annotation card with a query/answer pair
//   - Node, Edge: the graph projection of chunks and the links between them
//   - DocumentView, TextRun: what the core knows about the rendered document
//   - GenerationState, DeletionState, UploadState: explicit lifecycles
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
