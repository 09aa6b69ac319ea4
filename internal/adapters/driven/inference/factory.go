// Package inference provides factory functions for creating inference backends.
package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/pdfboard/internal/adapters/driven/inference/openai"
	"github.com/custodia-labs/pdfboard/internal/adapters/driven/inference/remote"
	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for backend connectivity validation.
const pingTimeout = 5 * time.Second

// CreateBackend creates the backend selected by settings.
// Returns nil if the backend is not configured. prompts may be nil.
func CreateBackend(settings *domain.BackendSettings, prompts driven.PromptStore) (driven.InferenceBackend, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.BackendHTTP:
		return remote.New(remote.Config{
			BaseURL: settings.BaseURL,
			Timeout: settings.Timeout,
		}), nil

	case domain.BackendOpenAI:
		b, err := openai.New(openai.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			TextModel:  settings.TextModel,
			ImageModel: settings.ImageModel,
			Timeout:    settings.Timeout,
		})
		if err != nil {
			return nil, err
		}
		if prompts != nil {
			b.SetPromptStore(prompts)
		}
		return b, nil

	default:
		return nil, fmt.Errorf("unsupported backend provider: %s", settings.Provider)
	}
}

// CreateAndValidateBackend creates a backend and validates connectivity.
// Returns the backend if successful, or an error with guidance.
func CreateAndValidateBackend(
	ctx context.Context,
	settings *domain.BackendSettings,
	prompts driven.PromptStore,
) (driven.InferenceBackend, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: not configured. Run 'pdfboard settings set backend.provider ...' to fix",
			domain.ErrBackendUnavailable)
	}

	backend, err := CreateBackend(settings, prompts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}

	if err := ping(ctx, backend); err != nil {
		return nil, fmt.Errorf("%w: %s unreachable (%w)", domain.ErrBackendUnavailable, backend.Name(), err)
	}

	return backend, nil
}

// ValidateBackendConfig creates a backend from settings and pings it.
func ValidateBackendConfig(ctx context.Context, settings *domain.BackendSettings) error {
	backend, err := CreateBackend(settings, nil)
	if err != nil {
		return err
	}
	if backend == nil {
		return nil
	}
	return ping(ctx, backend)
}

func ping(ctx context.Context, backend driven.InferenceBackend) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return backend.Ping(ctx)
}
