package providers

import (
	"context"
	"errors"
	"fmt"
)

const defaultOpenAIURL = "https://api.openai.com/v1"

// OpenAI implements the Reviewer interface for OpenAI's chat completions API
// and for servers that speak the same protocol.
type OpenAI struct {
	name   string
	apiKey string
	model  string
	url    string
	http   transport
}

// NewOpenAI creates a new OpenAI provider.
func NewOpenAI(opts Options) (*OpenAI, error) {
	if err := opts.requireKey("openai"); err != nil {
		return nil, err
	}
	return &OpenAI{
		name:   "openai",
		apiKey: opts.APIKey,
		model:  opts.Model,
		url:    opts.baseURL(defaultOpenAIURL) + "/chat/completions",
		http:   newTransport("openai", opts),
	}, nil
}

func (o *OpenAI) Name() string { return o.name }

func (o *OpenAI) Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error) {
	body := openaiRequest{
		Model:     o.model,
		Messages:  []openaiMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}

	headers := map[string]string{}
	if o.apiKey != "" {
		headers["Authorization"] = "Bearer " + o.apiKey
	}

	var result openaiResponse
	if err := o.http.postJSON(ctx, o.url, headers, body, &result); err != nil {
		return ReviewResponse{}, err
	}

	if len(result.Choices) == 0 {
		return ReviewResponse{}, fmt.Errorf("%s: no choices in response", o.name)
	}
	if result.Choices[0].Message.Content == "" {
		return ReviewResponse{}, errors.New(o.name + ": empty text content in API response")
	}

	return ReviewResponse{
		Content:    result.Choices[0].Message.Content,
		TokensUsed: result.Usage.TotalTokens,
	}, nil
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}

type openaiUsage struct {
	TotalTokens int `json:"total_tokens"`
}
