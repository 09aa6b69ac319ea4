package domain

// EventType identifies a board change.
type EventType string

// Board event types.
const (
	EventChunkCreated    EventType = "chunk_created"
	EventChunkUpdated    EventType = "chunk_updated"
	EventChunkRemoved    EventType = "chunk_removed"
	EventEdgesChanged    EventType = "edges_changed"
	EventSelectionChange EventType = "selection_changed"
	EventPageChanged     EventType = "page_changed"
	EventDeleteRequested EventType = "delete_requested"
	EventDeleteResolved  EventType = "delete_resolved"
	EventUploadChanged   EventType = "upload_changed"
	EventDocumentChanged EventType = "document_changed"
)

// Event tells driving adapters that board state changed.
// Adapters re-read what they need; events carry only identifiers.
type Event struct {
	Type    EventType `json:"type"`
	ChunkID string    `json:"chunk_id,omitempty"`
	Page    int       `json:"page,omitempty"`
}
