package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini implements the Reviewer interface for Google's Gemini API.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	http    transport
}

// NewGemini creates a new Gemini provider.
func NewGemini(opts Options) (*Gemini, error) {
	if err := opts.requireKey("gemini"); err != nil {
		return nil, err
	}
	if opts.Model == "" {
		return nil, errors.New("gemini: model is required")
	}
	t := newTransport("gemini", opts)
	t.classify = geminiClassify
	return &Gemini{
		apiKey:  opts.APIKey,
		model:   opts.Model,
		baseURL: opts.baseURL(defaultGeminiURL),
		http:    t,
	}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, strings.TrimPrefix(g.model, "models/"))

	body := geminiRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: req.Prompt}},
			},
		},
	}
	if req.MaxTokens > 0 || req.Temperature > 0 {
		body.GenerationConfig = &geminiGenConfig{MaxOutputTokens: req.MaxTokens}
		if req.Temperature > 0 {
			body.GenerationConfig.Temperature = &req.Temperature
		}
	}

	var result geminiResponse
	headers := map[string]string{"x-goog-api-key": g.apiKey}
	if err := g.http.postJSON(ctx, url, headers, body, &result); err != nil {
		return ReviewResponse{}, err
	}

	if len(result.Candidates) == 0 {
		if reason := result.PromptFeedback.BlockReason; reason != "" {
			return ReviewResponse{}, fmt.Errorf("gemini: prompt blocked: %s", reason)
		}
		return ReviewResponse{}, errors.New("gemini: no candidates in response")
	}

	cand := result.Candidates[0]
	if len(cand.Content.Parts) == 0 {
		return ReviewResponse{}, fmt.Errorf("gemini: no content in response (finish reason %s)", cand.FinishReason)
	}

	var content strings.Builder
	for _, part := range cand.Content.Parts {
		content.WriteString(part.Text)
	}

	return ReviewResponse{
		Content:    content.String(),
		TokensUsed: result.UsageMetadata.TotalTokenCount,
	}, nil
}

// geminiClassify maps Gemini's 400 API_KEY_INVALID onto an auth error.
func geminiClassify(status int, body []byte) error {
	if status == http.StatusBadRequest && bytes.Contains(body, []byte("API_KEY_INVALID")) {
		return &AuthError{Provider: "gemini", Message: errorMessage(body)}
	}
	return nil
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate    `json:"candidates"`
	PromptFeedback geminiPromptFeedback `json:"promptFeedback"`
	UsageMetadata  geminiUsage          `json:"usageMetadata"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiPromptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type geminiUsage struct {
	TotalTokenCount int `json:"totalTokenCount"`
}
