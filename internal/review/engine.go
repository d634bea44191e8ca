package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dshills/aireview/internal/gitctx"
	"github.com/dshills/aireview/internal/logger"
	"github.com/dshills/aireview/internal/providers"
	"github.com/dshills/aireview/internal/redact"
)

// Pipeline wires the diff source, the model and the reporter.
type Pipeline struct {
	Differ   gitctx.Differ
	Reviewer providers.Reviewer
	Reporter Reporter
	Logger   *slog.Logger

	// Model is recorded in the Result; the reviewer already carries it.
	Model string
	// Redact scrubs likely secrets from the diff before it is sent.
	Redact    bool
	MaxTokens int

	// Temperature is passed through to the provider; 0 keeps its default.
	Temperature float64
}

// Run reviews the changes between base and head. The reporter is only
// called once the model has replied.
func (p *Pipeline) Run(ctx context.Context, base, head string) (Result, error) {
	if p.Differ == nil || p.Reviewer == nil || p.Reporter == nil {
		return Result{}, errors.New("review pipeline is missing a stage")
	}
	log := p.Logger
	if log == nil {
		log = logger.Discard()
	}

	start := time.Now()
	diff, err := p.Differ.Diff(ctx, base, head)
	if err != nil {
		return Result{}, fmt.Errorf("retrieving diff: %w", err)
	}
	gitDur := time.Since(start)
	log.Debug("diff retrieved", "base", base, "head", head, "bytes", len(diff), "duration", gitDur)

	redacted := 0
	if p.Redact {
		diff, redacted = redact.Secrets(diff)
		if redacted > 0 {
			log.Info("redacted secrets from diff", "count", redacted)
		}
	}

	prompt := BuildPrompt(diff)

	llmStart := time.Now()
	resp, err := p.Reviewer.Review(ctx, providers.ReviewRequest{
		Prompt:      prompt,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	})
	if err != nil {
		return Result{}, fmt.Errorf("provider review: %w", err)
	}
	llmDur := time.Since(llmStart)
	log.Debug("review received", "provider", p.Reviewer.Name(), "tokens", resp.TokensUsed, "duration", llmDur)

	res := Result{
		Text:       resp.Content,
		Provider:   p.Reviewer.Name(),
		Model:      p.Model,
		Base:       base,
		Head:       head,
		TokensUsed: resp.TokensUsed,
		Redacted:   redacted,
		Timing: Timing{
			Git:   gitDur,
			LLM:   llmDur,
			Total: time.Since(start),
		},
	}

	if err := p.Reporter.Report(ctx, res); err != nil {
		return res, fmt.Errorf("reporting review: %w", err)
	}
	return res, nil
}
