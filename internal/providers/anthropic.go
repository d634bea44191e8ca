package providers

import (
	"context"
	"strings"
)

const (
	defaultAnthropicURL = "https://api.anthropic.com/v1"
	anthropicAPIVersion = "2023-06-01"
	anthropicMaxTokens  = 4096
)

// Anthropic implements the Reviewer interface for Anthropic's messages API.
type Anthropic struct {
	apiKey string
	model  string
	url    string
	http   transport
}

// NewAnthropic creates a new Anthropic provider.
func NewAnthropic(opts Options) (*Anthropic, error) {
	if err := opts.requireKey("anthropic"); err != nil {
		return nil, err
	}
	return &Anthropic{
		apiKey: opts.APIKey,
		model:  opts.Model,
		url:    opts.baseURL(defaultAnthropicURL) + "/messages",
		http:   newTransport("anthropic", opts),
	}, nil
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = anthropicMaxTokens
	}

	body := anthropicRequest{
		Model:     a.model,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicAPIVersion,
	}

	var result anthropicResponse
	if err := a.http.postJSON(ctx, a.url, headers, body, &result); err != nil {
		return ReviewResponse{}, err
	}

	var content strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return ReviewResponse{
		Content:    content.String(),
		TokensUsed: result.Usage.InputTokens + result.Usage.OutputTokens,
	}, nil
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature *float64           `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicBlock `json:"content"`
	Usage   anthropicUsage   `json:"usage"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
