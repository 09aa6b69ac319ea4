package driven

// PromptStore provides access to prompt templates used by model-backed
// inference backends.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAnswerQuery answers a question from the document's pages.
	// The template expects %s (numbered page texts) and %s (the question),
	// and must ask for a JSON object {"answer", "page", "text"}.
	PromptAnswerQuery = "answer_query"

	// PromptOptimizeImage rewrites a plain image request into a detailed
	// image generation prompt. The template expects one %s placeholder.
	PromptOptimizeImage = "optimize_image"
)
