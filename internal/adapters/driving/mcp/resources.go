package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for pdfboard resources.
	uriScheme = "pdfboard://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Current page with highlight markup.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "document",
		Name:        "document",
		Description: "The open document: pagination and the text runs of the current page",
		MIMEType:    "application/json",
	}, s.handleDocumentResource)

	// Nodes and edges.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "graph",
		Name:        "graph",
		Description: "Chunks as graph nodes and the links between them",
		MIMEType:    "application/json",
	}, s.handleGraphResource)

	// Template for a single chunk.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "chunks/{chunkId}",
		Name:        "chunk",
		Description: "A single chunk with its answer and reference",
		MIMEType:    "application/json",
	}, s.handleChunkResource)
}

// handleDocumentResource returns the document view and current page runs.
func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	view, err := s.ports.Board.View(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading view: %w", err)
	}
	_, runs, err := s.ports.Board.Surface(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading surface: %w", err)
	}

	type documentInfo struct {
		domain.DocumentView
		Runs []domain.TextRun `json:"runs"`
	}
	return jsonResource(req.Params.URI, documentInfo{DocumentView: view, Runs: runs})
}

// handleGraphResource returns every node and edge.
func (s *Server) handleGraphResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	nodes, err := s.ports.Board.Nodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}
	edges, err := s.ports.Board.Edges(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing edges: %w", err)
	}

	type graphInfo struct {
		Nodes []domain.Node `json:"nodes"`
		Edges []domain.Edge `json:"edges"`
	}
	return jsonResource(req.Params.URI, graphInfo{Nodes: nodes, Edges: edges})
}

// handleChunkResource returns one chunk.
func (s *Server) handleChunkResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract chunkId from URI: pdfboard://chunks/{chunkId}
	chunkID := extractChunkID(req.Params.URI)
	if chunkID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	c, err := s.ports.Board.Chunk(ctx, chunkID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting chunk: %w", err)
	}
	return jsonResource(req.Params.URI, c)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractChunkID extracts the chunk ID from a URI like pdfboard://chunks/{chunkId}.
func extractChunkID(uri string) string {
	const prefix = uriScheme + "chunks/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
