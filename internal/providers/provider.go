package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single API request when Options.Timeout is zero.
const DefaultTimeout = 120 * time.Second

// ReviewRequest contains the prompt sent to the model.
type ReviewRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// ReviewResponse contains the generated text, consumed verbatim.
type ReviewResponse struct {
	Content    string
	TokensUsed int
}

// Reviewer is the provider abstraction interface.
type Reviewer interface {
	Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error)
	Name() string
}

// Options configures a provider. APIKey must be supplied by the caller.
type Options struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (o Options) baseURL(def string) string {
	if o.BaseURL == "" {
		return def
	}
	return strings.TrimRight(o.BaseURL, "/")
}

func (o Options) requireKey(provider string) error {
	if o.APIKey == "" {
		return fmt.Errorf("%w for %s", ErrMissingCredential, provider)
	}
	return nil
}

// New creates a provider by name.
func New(opts Options) (Reviewer, error) {
	switch strings.ToLower(opts.Provider) {
	case "gemini", "google":
		return NewGemini(opts)
	case "openai":
		return NewOpenAI(opts)
	case "anthropic":
		return NewAnthropic(opts)
	case "ollama", "lmstudio":
		return NewOllama(opts)
	default:
		// Reached only by callers that skip config.Validate.
		return nil, fmt.Errorf("unknown provider: %s", opts.Provider)
	}
}
