package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
)

// mockPromptStore is a test double for driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", assert.AnError
}

func (m *mockPromptStore) Reload() {}

func chatReply(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 0,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	}
}

// fakeAPI serves the OpenAI endpoints the backend uses and records prompts.
type fakeAPI struct {
	answer   string
	imageURL string
	status   int

	mu      sync.Mutex
	prompts []string
}

func (f *fakeAPI) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.status != 0 {
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			body, _ := io.ReadAll(r.Body)
			var req struct {
				Messages []struct {
					Content string `json:"content"`
				} `json:"messages"`
			}
			require.NoError(t, json.Unmarshal(body, &req))
			prompt := req.Messages[0].Content
			f.mu.Lock()
			f.prompts = append(f.prompts, prompt)
			f.mu.Unlock()
			if strings.HasPrefix(prompt, "OPTIMIZE") {
				_ = json.NewEncoder(w).Encode(chatReply("a fox, golden hour, oil painting"))
				return
			}
			_ = json.NewEncoder(w).Encode(chatReply(f.answer))
		case strings.HasSuffix(r.URL.Path, "/images/generations"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"created": 0,
				"data":    []map[string]any{{"url": f.imageURL}},
			})
		case strings.HasSuffix(r.URL.Path, "/models"):
			_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": []any{}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestBackend(t *testing.T, api *fakeAPI) *Backend {
	t.Helper()
	retries := 0
	b, err := New(Config{APIKey: "sk-test", BaseURL: api.server(t).URL, MaxRetries: &retries})
	require.NoError(t, err)
	b.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptAnswerQuery:   "PAGES\n%s\nQ: %s",
		driven.PromptOptimizeImage: "OPTIMIZE %s",
	}})
	return b
}

func uploadPages(t *testing.T, b *Backend, pages ...string) {
	t.Helper()
	require.NoError(t, b.UploadDocument(context.Background(), driven.UploadedDocument{
		Name:  "paper.pdf",
		Pages: pages,
	}))
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrAPIKeyNotSet)
}

func TestNew_Defaults(t *testing.T) {
	b, err := New(Config{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTextModel, b.textModel)
	assert.Equal(t, DefaultImageModel, b.imageModel)
	assert.Equal(t, "openai", b.Name())
}

func TestProcessQuery(t *testing.T) {
	api := &fakeAPI{answer: `{"answer": "X is Y", "page": 3, "text": "X is defined"}`}
	b := newTestBackend(t, api)
	uploadPages(t, b, "intro", "middle", "here X is defined as Y")

	ans, err := b.ProcessQuery(context.Background(), "chunk-1", "What is X?")
	require.NoError(t, err)
	assert.Equal(t, domain.TextAnswer{Answer: "X is Y", Page: 3, Text: "X is defined"}, ans)

	prompts := api.recorded()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "--- page 3 ---\nhere X is defined as Y")
	assert.True(t, strings.HasSuffix(prompts[0], "Q: What is X?"))
}

func TestProcessQuery_NoDocument(t *testing.T) {
	b := newTestBackend(t, &fakeAPI{})
	_, err := b.ProcessQuery(context.Background(), "id", "q")
	assert.ErrorIs(t, err, domain.ErrNoDocument)
}

func TestProcessQuery_APIError(t *testing.T) {
	b := newTestBackend(t, &fakeAPI{status: http.StatusUnauthorized})
	uploadPages(t, b, "page")

	_, err := b.ProcessQuery(context.Background(), "id", "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion")
}

func TestProcessQuery_BadJSON(t *testing.T) {
	b := newTestBackend(t, &fakeAPI{answer: "I think X is Y"})
	uploadPages(t, b, "page")

	_, err := b.ProcessQuery(context.Background(), "id", "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode answer")
}

func TestUploadDocument_NoPages(t *testing.T) {
	b := newTestBackend(t, &fakeAPI{})
	err := b.UploadDocument(context.Background(), driven.UploadedDocument{Name: "scan.pdf"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGenerateImage(t *testing.T) {
	api := &fakeAPI{imageURL: "https://images.example/fox.png"}
	b := newTestBackend(t, api)

	ans, err := b.GenerateImage(context.Background(), "a fox")
	require.NoError(t, err)
	assert.Equal(t, domain.ImageAnswer{
		URL:             "https://images.example/fox.png",
		OriginalPrompt:  "a fox",
		OptimizedPrompt: "a fox, golden hour, oil painting",
	}, ans)
	assert.Equal(t, []string{"OPTIMIZE a fox"}, api.recorded())
}

func TestPing(t *testing.T) {
	assert.NoError(t, newTestBackend(t, &fakeAPI{}).Ping(context.Background()))
	assert.Error(t, newTestBackend(t, &fakeAPI{status: http.StatusUnauthorized}).Ping(context.Background()))
}

func TestParseAnswer(t *testing.T) {
	pages := []string{"alpha beta", "gamma delta", "beta again"}

	tests := []struct {
		name     string
		content  string
		expected domain.TextAnswer
		wantErr  bool
	}{
		{
			name:     "reference on hinted page",
			content:  `{"answer":"A","page":2,"text":"gamma"}`,
			expected: domain.TextAnswer{Answer: "A", Page: 2, Text: "gamma"},
		},
		{
			name:     "reference moved to the page that has it",
			content:  `{"answer":"A","page":1,"text":"delta"}`,
			expected: domain.TextAnswer{Answer: "A", Page: 2, Text: "delta"},
		},
		{
			name:     "hint preferred when several pages match",
			content:  `{"answer":"A","page":3,"text":"beta"}`,
			expected: domain.TextAnswer{Answer: "A", Page: 3, Text: "beta"},
		},
		{
			name:     "passage found nowhere drops reference",
			content:  `{"answer":"A","page":1,"text":"omega"}`,
			expected: domain.TextAnswer{Answer: "A"},
		},
		{
			name:     "fenced json",
			content:  "```json\n{\"answer\":\"A\",\"page\":1,\"text\":\"alpha\"}\n```",
			expected: domain.TextAnswer{Answer: "A", Page: 1, Text: "alpha"},
		},
		{
			name:    "not json",
			content: "A",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ans, err := parseAnswer(tc.content, pages)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ans)
		})
	}
}

func TestNumberPages_Limit(t *testing.T) {
	out := numberPages([]string{"one", "two", strings.Repeat("x", 100), "four"}, 60)
	assert.Contains(t, out, "--- page 1 ---\none")
	assert.Contains(t, out, "--- page 2 ---\ntwo")
	assert.Contains(t, out, "--- page 3 ---\nxxxxx")
	assert.NotContains(t, out, "xxxxxx")
	assert.NotContains(t, out, "page 4")
	assert.LessOrEqual(t, len(out), 60)
}

func TestNumberPages_OversizedFirstPage(t *testing.T) {
	tests := []struct {
		name  string
		page  string
		limit int
		want  string
	}{
		{name: "ascii", page: strings.Repeat("a", 500), limit: 25, want: "--- page 1 ---\naaaaaaaaaa"},
		{name: "rune boundary", page: "ééééé", limit: 20, want: "--- page 1 ---\néé"},
		{name: "no room for text", page: "abc", limit: 10, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, numberPages([]string{tt.page}, tt.limit))
		})
	}
}
