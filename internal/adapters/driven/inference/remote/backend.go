// Package remote provides an inference backend adapter for the document Q&A
// service: /process_query, /generate-image and /upload_pdf.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
)

// Ensure Backend implements the interface.
var _ driven.InferenceBackend = (*Backend)(nil)

// Default configuration values.
const (
	DefaultBaseURL = domain.DefaultBackendURL
	DefaultTimeout = domain.DefaultBackendTimeout
)

// Endpoint paths.
const (
	pathProcessQuery  = "/process_query"
	pathGenerateImage = "/generate-image"
	pathUploadPDF     = "/upload_pdf"
)

// Config holds configuration for the remote backend.
type Config struct {
	// BaseURL is the service base URL (default: http://localhost:8000).
	BaseURL string

	// Timeout is the per-request timeout (default: 2m).
	Timeout time.Duration

	// Client overrides the HTTP client. Timeout is ignored when set.
	Client *http.Client
}

// Backend talks to the document Q&A service over HTTP.
type Backend struct {
	client  *http.Client
	baseURL string
}

// processQueryRequest is the /process_query request format.
type processQueryRequest struct {
	ID    string `json:"id"`
	Query string `json:"query"`
}

// processQueryResponse is the /process_query response format.
type processQueryResponse struct {
	AIAnswer string `json:"ai_answer"`
	Page     int    `json:"page"`
	Text     string `json:"text"`
}

// generateImageRequest is the /generate-image request format.
type generateImageRequest struct {
	TextPrompt string `json:"text_prompt"`
}

// generateImageResponse is the /generate-image response format.
type generateImageResponse struct {
	Message         string `json:"message"`
	ImageURL        string `json:"image_url"`
	OriginalPrompt  string `json:"original_prompt"`
	OptimizedPrompt string `json:"optimized_prompt"`
}

// uploadResponse is the /upload_pdf acknowledgement. The service reports
// processing failures in Error with a 200 status.
type uploadResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// New creates a remote backend.
func New(cfg Config) *Backend {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Backend{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// ProcessQuery answers a text query about the uploaded document.
func (b *Backend) ProcessQuery(ctx context.Context, id, query string) (domain.TextAnswer, error) {
	var resp processQueryResponse
	if err := b.postJSON(ctx, pathProcessQuery, processQueryRequest{ID: id, Query: query}, &resp); err != nil {
		return domain.TextAnswer{}, fmt.Errorf("process query: %w", err)
	}
	return domain.TextAnswer{
		Answer: resp.AIAnswer,
		Page:   resp.Page,
		Text:   resp.Text,
	}, nil
}

// GenerateImage produces an image for prompt.
func (b *Backend) GenerateImage(ctx context.Context, prompt string) (domain.ImageAnswer, error) {
	var resp generateImageResponse
	if err := b.postJSON(ctx, pathGenerateImage, generateImageRequest{TextPrompt: prompt}, &resp); err != nil {
		return domain.ImageAnswer{}, fmt.Errorf("generate image: %w", err)
	}
	return domain.ImageAnswer{
		URL:             resp.ImageURL,
		OriginalPrompt:  resp.OriginalPrompt,
		OptimizedPrompt: resp.OptimizedPrompt,
	}, nil
}

// UploadDocument sends the document as the multipart field "file".
func (b *Backend) UploadDocument(ctx context.Context, doc driven.UploadedDocument) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", doc.Name)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(doc.Data); err != nil {
		return fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+pathUploadPDF, &body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp uploadResponse
	if err := b.do(req, &resp); err != nil {
		return fmt.Errorf("upload document: %w", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("upload document: %s", resp.Error)
	}
	return nil
}

// Ping validates the service is reachable. Any HTTP response counts; the
// service has no health endpoint.
func (b *Backend) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/", http.NoBody)
	if err != nil {
		return fmt.Errorf("remote: failed to create ping request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote: ping failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("remote: service returned status %d", resp.StatusCode)
	}
	return nil
}

// Name identifies the backend.
func (b *Backend) Name() string {
	return string(domain.BackendHTTP)
}

func (b *Backend) postJSON(ctx context.Context, path string, in, out any) error {
	jsonBody, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return b.do(req, out)
}

func (b *Backend) do(req *http.Request, out any) error {
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("service error (status %d): failed to read response", resp.StatusCode)
		}
		return fmt.Errorf("service error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
