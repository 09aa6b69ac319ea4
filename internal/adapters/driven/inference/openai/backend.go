// Package openai provides an inference backend adapter using the OpenAI API.
//
// The document is kept locally as page text; text queries send the pages as
// context and ask for a JSON answer naming the page and supporting passage.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
	"github.com/custodia-labs/pdfboard/internal/logger"
)

// Ensure Backend implements the interface.
var _ driven.InferenceBackend = (*Backend)(nil)

// Default configuration values.
const (
	DefaultTextModel  = domain.DefaultTextModel
	DefaultImageModel = domain.DefaultImageModel
	DefaultTimeout    = domain.DefaultBackendTimeout

	// maxContextChars bounds the page text sent with each query.
	maxContextChars = 200_000
)

// ErrAPIKeyNotSet is returned when no API key is configured.
var ErrAPIKeyNotSet = errors.New("openai: API key is required")

// Config holds configuration for the OpenAI backend.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL overrides the API base URL for compatible services.
	BaseURL string

	// TextModel answers text queries (default: gpt-4o-mini).
	TextModel string

	// ImageModel generates images (default: dall-e-3).
	ImageModel string

	// Timeout is the per-request timeout (default: 2m).
	Timeout time.Duration

	// MaxRetries overrides the SDK retry count when non-nil.
	MaxRetries *int
}

// Backend answers queries with OpenAI chat and image models.
type Backend struct {
	client      openai.Client
	textModel   string
	imageModel  string
	promptStore driven.PromptStore

	mu    sync.RWMutex
	name  string
	pages []string
}

// answerPayload is the JSON object the answer prompt asks for.
type answerPayload struct {
	Answer string `json:"answer"`
	Page   int    `json:"page"`
	Text   string `json:"text"`
}

// New creates an OpenAI backend.
func New(cfg Config) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultTextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultImageModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.MaxRetries != nil {
		opts = append(opts, option.WithMaxRetries(*cfg.MaxRetries))
	}

	return &Backend{
		client:     openai.NewClient(opts...),
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
	}, nil
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the backend uses its built-in prompts.
func (b *Backend) SetPromptStore(store driven.PromptStore) {
	b.promptStore = store
}

// UploadDocument keeps the page texts as context for later queries.
func (b *Backend) UploadDocument(_ context.Context, doc driven.UploadedDocument) error {
	if len(doc.Pages) == 0 {
		return fmt.Errorf("openai: %s has no extractable text: %w", doc.Name, domain.ErrInvalidInput)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.name = doc.Name
	b.pages = append([]string(nil), doc.Pages...)
	logger.Debug("openai: holding %d pages of %s", len(doc.Pages), doc.Name)
	return nil
}

// ProcessQuery answers query from the uploaded pages.
func (b *Backend) ProcessQuery(ctx context.Context, _, query string) (domain.TextAnswer, error) {
	b.mu.RLock()
	name, pages := b.name, b.pages
	b.mu.RUnlock()
	if len(pages) == 0 {
		return domain.TextAnswer{}, fmt.Errorf("openai: %w", domain.ErrNoDocument)
	}
	logger.Debug("openai: answering %q from %s", query, name)

	template := b.loadPrompt(driven.PromptAnswerQuery, defaultAnswerPrompt)
	prompt := fmt.Sprintf(template, numberPages(pages, maxContextChars), query)

	completion, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(b.textModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.2),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	})
	if err != nil {
		return domain.TextAnswer{}, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return domain.TextAnswer{}, errors.New("openai: no completion choices returned")
	}

	return parseAnswer(completion.Choices[0].Message.Content, pages)
}

// GenerateImage rephrases prompt for the image model, then generates it.
func (b *Backend) GenerateImage(ctx context.Context, prompt string) (domain.ImageAnswer, error) {
	optimized, err := b.optimizePrompt(ctx, prompt)
	if err != nil {
		logger.Warn("openai: prompt optimisation failed, using original: %v", err)
		optimized = prompt
	}

	resp, err := b.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         optimized,
		Model:          openai.ImageModel(b.imageModel),
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	})
	if err != nil {
		return domain.ImageAnswer{}, fmt.Errorf("openai: generate image: %w", err)
	}
	if len(resp.Data) == 0 {
		return domain.ImageAnswer{}, errors.New("openai: no image returned")
	}

	return domain.ImageAnswer{
		URL:             resp.Data[0].URL,
		OriginalPrompt:  prompt,
		OptimizedPrompt: optimized,
	}, nil
}

// Ping validates the API key by listing models.
func (b *Backend) Ping(ctx context.Context) error {
	if _, err := b.client.Models.List(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// Name identifies the backend.
func (b *Backend) Name() string {
	return string(domain.BackendOpenAI)
}

func (b *Backend) optimizePrompt(ctx context.Context, prompt string) (string, error) {
	template := b.loadPrompt(driven.PromptOptimizeImage, defaultOptimizePrompt)
	completion, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(b.textModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(fmt.Sprintf(template, prompt)),
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(200),
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	optimized := strings.TrimSpace(completion.Choices[0].Message.Content)
	if optimized == "" {
		return "", errors.New("empty optimised prompt")
	}
	return optimized, nil
}

// defaultAnswerPrompt is the fallback prompt when no PromptStore is configured.
const defaultAnswerPrompt = `Answer the question using only the document pages below.

%s

Question: %s

Reply with a JSON object {"answer": string, "page": number, "text": string} where
"text" is a short passage copied exactly from that page.`

// defaultOptimizePrompt is the fallback prompt when no PromptStore is configured.
const defaultOptimizePrompt = `Rephrase this request as a detailed image generation prompt.
Return ONLY the prompt.

Request: %s`

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (b *Backend) loadPrompt(name, fallback string) string {
	if b.promptStore == nil {
		return fallback
	}
	prompt, err := b.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

// numberPages renders pages with "--- page N ---" headers within limit
// bytes. The page that overflows is cut short and later pages are left out.
func numberPages(pages []string, limit int) string {
	var sb strings.Builder
	for i, p := range pages {
		header := fmt.Sprintf("--- page %d ---\n", i+1)
		room := limit - sb.Len() - len(header)
		if room <= 0 {
			break
		}
		sb.WriteString(header)
		if len(p) > room {
			sb.WriteString(truncateUTF8(p, room))
			break
		}
		sb.WriteString(p)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// parseAnswer decodes the model reply and checks its reference against the
// pages. A passage found on a different page moves the reference there; a
// passage found nowhere keeps the answer but drops the reference.
func parseAnswer(content string, pages []string) (domain.TextAnswer, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var payload answerPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return domain.TextAnswer{}, fmt.Errorf("openai: decode answer: %w", err)
	}

	ans := domain.TextAnswer{Answer: strings.TrimSpace(payload.Answer)}
	text := strings.TrimSpace(payload.Text)
	if text == "" {
		return ans, nil
	}

	if page := locate(pages, payload.Page, text); page > 0 {
		ans.Page = page
		ans.Text = text
	}
	return ans, nil
}

// locate returns the page containing text, preferring hint.
func locate(pages []string, hint int, text string) int {
	if hint >= 1 && hint <= len(pages) && strings.Contains(pages[hint-1], text) {
		return hint
	}
	for i, p := range pages {
		if strings.Contains(p, text) {
			return i + 1
		}
	}
	return 0
}
