package driven

import (
	"context"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

// InferenceBackend answers queries about the uploaded document.
//
// Implementations may include:
//   - The document Q&A service (/process_query, /generate-image, /upload_pdf)
//   - OpenAI chat and image APIs
type InferenceBackend interface {
	// ProcessQuery answers a text query. id is the chunk the answer is for.
	// The answer carries the page and text span it was drawn from.
	ProcessQuery(ctx context.Context, id, query string) (domain.TextAnswer, error)

	// GenerateImage produces an image for prompt and returns its URL.
	GenerateImage(ctx context.Context, prompt string) (domain.ImageAnswer, error)

	// UploadDocument makes doc the context for subsequent queries.
	UploadDocument(ctx context.Context, doc UploadedDocument) error

	// Ping validates the backend is reachable.
	Ping(ctx context.Context) error

	// Name identifies the backend in logs and metrics.
	Name() string
}

// UploadedDocument is a document handed to the backend.
type UploadedDocument struct {
	// Name is the file name sent with the upload.
	Name string

	// Data is the raw file content.
	Data []byte

	// Pages holds the plain text of each page, index 0 being page 1.
	Pages []string
}
