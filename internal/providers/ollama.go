package providers

import "strings"

const defaultOllamaURL = "http://localhost:11434"

// NewOllama creates a provider for Ollama or LM Studio through their
// OpenAI-compatible endpoint. The API key is optional.
func NewOllama(opts Options) (*OpenAI, error) {
	base := normalizeOllamaURL(opts.baseURL(defaultOllamaURL))
	return &OpenAI{
		name:   "ollama",
		apiKey: opts.APIKey,
		model:  opts.Model,
		url:    base + "/v1/chat/completions",
		http:   newTransport("ollama", opts),
	}, nil
}

// normalizeOllamaURL strips a trailing slash, /v1 or /v1/chat/completions.
func normalizeOllamaURL(u string) string {
	u = strings.TrimRight(u, "/")
	u = strings.TrimSuffix(u, "/v1/chat/completions")
	u = strings.TrimSuffix(u, "/v1")
	return u
}
