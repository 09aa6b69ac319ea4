package domain

import "strconv"

// NodePayload is the visual content a graph node carries.
type NodePayload struct {
	Query  string      `json:"query"`
	Answer string      `json:"answer"`
	Kind   ContentKind `json:"kind"`
	Status Status      `json:"status"`
	Color  string      `json:"color"`

	// FontSize is the text size the surface should render the answer at.
	FontSize int `json:"font_size"`
}

// Node is a chunk as the graph surface sees it.
type Node struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Size     Size     `json:"size"`

	// Label is the 1-based insertion index of the chunk.
	Label string `json:"label"`

	Payload NodePayload `json:"payload"`
}

// NodeFromChunk projects a chunk at the given 0-based store index.
func NodeFromChunk(c Chunk, index int) Node {
	return Node{
		ID:       c.ID,
		Position: c.Geometry.Position,
		Size:     c.Geometry.Size,
		Label:    strconv.Itoa(index + 1),
		Payload: NodePayload{
			Query:    c.Content.Query,
			Answer:   c.Content.Answer,
			Kind:     c.Content.Kind,
			Status:   c.Content.Status,
			Color:    c.Style.Color,
			FontSize: c.Style.FontSize,
		},
	}
}

// Edge is an undirected, session-only link between two chunks.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Touches returns true if either endpoint is chunkID.
func (e Edge) Touches(chunkID string) bool {
	return e.Source == chunkID || e.Target == chunkID
}

// Connects returns true if the edge links a and b in either direction.
func (e Edge) Connects(a, b string) bool {
	return (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a)
}
