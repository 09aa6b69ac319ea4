package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

// SubmitQueryInput is the input schema for the submit_query tool.
type SubmitQueryInput struct {
	Query string `json:"query" jsonschema:"the question to ask about the document, or an image prompt"`
	Kind  string `json:"kind,omitempty" jsonschema:"text (default) or image"`
	Wait  bool   `json:"wait,omitempty" jsonschema:"wait for the answer before returning"`
}

// ChunkIDInput addresses one chunk.
type ChunkIDInput struct {
	ID string `json:"id" jsonschema:"the chunk id"`
}

// ConnectInput is the input schema for the connect_chunks tool.
type ConnectInput struct {
	Source string `json:"source" jsonschema:"id of the first chunk"`
	Target string `json:"target" jsonschema:"id of the second chunk"`
}

// EmptyInput is used by tools that take no arguments.
type EmptyInput struct{}

// ChunkOutput is a chunk as the tools report it.
type ChunkOutput struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Query     string `json:"query"`
	Answer    string `json:"answer"`
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	Page      int    `json:"page,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// ChunkListOutput is the output schema for list_chunks.
type ChunkListOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
}

// SelectOutput is the output schema for select_chunk.
type SelectOutput struct {
	ID      string `json:"id"`
	Page    int    `json:"page"`
	Matches int    `json:"matches"`
}

// EdgeOutput is the output schema for connect_chunks.
type EdgeOutput struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// DeleteOutput reports the deletion state after a delete tool.
type DeleteOutput struct {
	ID      string `json:"id,omitempty"`
	Pending bool   `json:"pending"`
	Removed bool   `json:"removed"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "submit_query",
		Description: "Ask a question about the open document or request an image; adds a chunk to the board",
	}, s.handleSubmitQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_chunks",
		Description: "List every chunk on the board in insertion order",
	}, s.handleListChunks)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "select_chunk",
		Description: "Select a chunk, switching to its page and highlighting its reference",
	}, s.handleSelectChunk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "connect_chunks",
		Description: "Link two chunks on the board",
	}, s.handleConnectChunks)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "request_delete",
		Description: "Mark a chunk for deletion; confirm_delete or cancel_delete resolves it",
	}, s.handleRequestDelete)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "confirm_delete",
		Description: "Remove the chunk pending deletion together with its links",
	}, s.handleConfirmDelete)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cancel_delete",
		Description: "Abandon the pending deletion",
	}, s.handleCancelDelete)
}

// handleSubmitQuery handles the submit_query tool invocation.
func (s *Server) handleSubmitQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SubmitQueryInput,
) (*mcp.CallToolResult, ChunkOutput, error) {
	kind, err := domain.ParseContentKind(input.Kind)
	if err != nil {
		return nil, ChunkOutput{}, err
	}

	c, err := s.ports.Board.Submit(ctx, input.Query, kind)
	if err != nil {
		return nil, ChunkOutput{}, err
	}

	if input.Wait {
		if c, err = s.ports.Board.AwaitChunk(ctx, c.ID); err != nil {
			return nil, ChunkOutput{}, fmt.Errorf("waiting for answer: %w", err)
		}
	}

	label, err := s.labelOf(ctx, c.ID)
	if err != nil {
		return nil, ChunkOutput{}, err
	}
	return nil, toChunkOutput(c, label), nil
}

// handleListChunks handles the list_chunks tool invocation.
func (s *Server) handleListChunks(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, ChunkListOutput, error) {
	chunks, err := s.ports.Board.Chunks(ctx)
	if err != nil {
		return nil, ChunkListOutput{}, err
	}

	output := ChunkListOutput{
		Chunks: make([]ChunkOutput, len(chunks)),
		Count:  len(chunks),
	}
	for i, c := range chunks {
		output.Chunks[i] = toChunkOutput(c, domain.NodeFromChunk(c, i).Label)
	}
	return nil, output, nil
}

// handleSelectChunk handles the select_chunk tool invocation.
func (s *Server) handleSelectChunk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChunkIDInput,
) (*mcp.CallToolResult, SelectOutput, error) {
	n, err := s.ports.Board.Select(ctx, input.ID)
	if err != nil {
		return nil, SelectOutput{}, err
	}
	view, err := s.ports.Board.View(ctx)
	if err != nil {
		return nil, SelectOutput{}, err
	}
	return nil, SelectOutput{ID: input.ID, Page: view.CurrentPage, Matches: n}, nil
}

// handleConnectChunks handles the connect_chunks tool invocation.
func (s *Server) handleConnectChunks(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConnectInput,
) (*mcp.CallToolResult, EdgeOutput, error) {
	e, err := s.ports.Board.Connect(ctx, input.Source, input.Target)
	if err != nil {
		return nil, EdgeOutput{}, err
	}
	return nil, EdgeOutput{ID: e.ID, Source: e.Source, Target: e.Target}, nil
}

// handleRequestDelete handles the request_delete tool invocation.
func (s *Server) handleRequestDelete(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChunkIDInput,
) (*mcp.CallToolResult, DeleteOutput, error) {
	if _, err := s.ports.Board.Chunk(ctx, input.ID); err != nil {
		return nil, DeleteOutput{}, err
	}
	if err := s.ports.Board.RequestDelete(ctx, input.ID); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{ID: input.ID, Pending: true}, nil
}

// handleConfirmDelete handles the confirm_delete tool invocation.
func (s *Server) handleConfirmDelete(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, DeleteOutput, error) {
	id, err := s.ports.Board.ConfirmDelete(ctx)
	if err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{ID: id, Removed: true}, nil
}

// handleCancelDelete handles the cancel_delete tool invocation.
func (s *Server) handleCancelDelete(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, DeleteOutput, error) {
	id, _, err := s.ports.Board.PendingDelete(ctx)
	if err != nil {
		return nil, DeleteOutput{}, err
	}
	if err := s.ports.Board.CancelDelete(ctx); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{ID: id}, nil
}

// labelOf returns the index label of id, or "" if it is gone.
func (s *Server) labelOf(ctx context.Context, id string) (string, error) {
	nodes, err := s.ports.Board.Nodes(ctx)
	if err != nil {
		return "", err
	}
	for _, n := range nodes {
		if n.ID == id {
			return n.Label, nil
		}
	}
	return "", nil
}

func toChunkOutput(c domain.Chunk, label string) ChunkOutput {
	return ChunkOutput{
		ID:        c.ID,
		Label:     label,
		Query:     c.Content.Query,
		Answer:    c.Content.Answer,
		Kind:      c.Content.Kind.String(),
		Status:    c.Content.Status.String(),
		Page:      c.Reference.Page,
		Reference: c.Reference.Text,
	}
}
