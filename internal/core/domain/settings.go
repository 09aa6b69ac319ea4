package domain

import "time"

const unknownDescription = "Unknown"

// BackendProvider identifies which inference backend answers queries.
type BackendProvider string

// Available backend providers.
const (
	// BackendHTTP is the document Q&A service exposing /process_query,
	// /generate-image and /upload_pdf.
	BackendHTTP BackendProvider = "http"

	// BackendOpenAI talks to the OpenAI API directly. Page references are
	// resolved locally against the open document.
	BackendOpenAI BackendProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p BackendProvider) IsValid() bool {
	switch p {
	case BackendHTTP, BackendOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p BackendProvider) RequiresAPIKey() bool {
	return p == BackendOpenAI
}

// String returns the string representation.
func (p BackendProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p BackendProvider) Description() string {
	switch p {
	case BackendHTTP:
		return "Document Q&A service (HTTP)"
	case BackendOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// AllBackendProviders returns every supported provider.
func AllBackendProviders() []BackendProvider {
	return []BackendProvider{BackendHTTP, BackendOpenAI}
}

// BackendSettings holds inference backend configuration.
type BackendSettings struct {
	// Provider selects the backend implementation.
	Provider BackendProvider `validate:"required,oneof=http openai"`

	// BaseURL is the service endpoint (for the HTTP provider).
	BaseURL string `validate:"omitempty,url"`

	// Timeout bounds a single request. Zero means no timeout.
	Timeout time.Duration `validate:"gte=0"`

	// APIKey is the API key (for OpenAI).
	APIKey string `validate:"required_if=Provider openai"`

	// TextModel is the chat model used for text queries (OpenAI).
	TextModel string

	// ImageModel is the image model used for image queries (OpenAI).
	ImageModel string
}

// IsConfigured returns true if the backend is set up.
func (b BackendSettings) IsConfigured() bool {
	if !b.Provider.IsValid() {
		return false
	}
	if b.Provider.RequiresAPIKey() && b.APIKey == "" {
		return false
	}
	if b.Provider == BackendHTTP && b.BaseURL == "" {
		return false
	}
	return true
}

// GenerationSettings holds request lifecycle configuration.
type GenerationSettings struct {
	// RateLimit is the number of requests per second sent to the backend.
	// Zero leaves submissions unbounded.
	RateLimit float64 `validate:"gte=0"`

	// Burst is the token bucket size when RateLimit is set.
	Burst int `validate:"gte=0"`

	// FollowFulfilled selects a text chunk as soon as its answer arrives,
	// switching page and highlighting its reference.
	FollowFulfilled bool
}

// JournalSettings holds generation journal configuration.
type JournalSettings struct {
	// Enabled turns on the request audit log.
	Enabled bool

	// Dir is where the journal database lives. Empty means the config dir.
	Dir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Backend    BackendSettings
	Generation GenerationSettings
	Journal    JournalSettings
}

// Defaults.
const (
	DefaultBackendURL     = "http://localhost:8000"
	DefaultBackendTimeout = 2 * time.Minute
	DefaultTextModel      = "gpt-4o-mini"
	DefaultImageModel     = "dall-e-3"
	DefaultBurst          = 1
)

// DefaultAppSettings returns settings with sensible defaults.
// Submissions are unbounded and fulfilled text chunks are followed.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Backend: BackendSettings{
			Provider:   BackendHTTP,
			BaseURL:    DefaultBackendURL,
			Timeout:    DefaultBackendTimeout,
			TextModel:  DefaultTextModel,
			ImageModel: DefaultImageModel,
		},
		Generation: GenerationSettings{
			RateLimit:       0,
			Burst:           DefaultBurst,
			FollowFulfilled: true,
		},
		Journal: JournalSettings{
			Enabled: false,
		},
	}
}
