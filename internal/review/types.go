package review

import (
	"context"
	"time"
)

// Result is one completed review. Text is the model's reply, verbatim; the
// remaining fields are metadata for reporters and logs.
type Result struct {
	Text       string
	Provider   string
	Model      string
	Base       string
	Head       string
	TokensUsed int
	Redacted   int
	Timing     Timing
}

// Timing contains per-stage durations.
type Timing struct {
	Git   time.Duration
	LLM   time.Duration
	Total time.Duration
}

// Reporter delivers a Result to its destination.
type Reporter interface {
	Report(ctx context.Context, r Result) error
}
