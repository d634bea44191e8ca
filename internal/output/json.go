package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/aireview/internal/review"
)

// JSON writes the result as a single JSON object.
type JSON struct {
	Out io.Writer
}

type jsonReport struct {
	Label      string `json:"label"`
	Summary    string `json:"summary"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Base       string `json:"base"`
	Head       string `json:"head"`
	TokensUsed int    `json:"tokensUsed"`
	Redacted   int    `json:"redacted,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

func (j *JSON) Report(_ context.Context, r review.Result) error {
	data, err := json.MarshalIndent(jsonReport{
		Label:      Label,
		Summary:    r.Text,
		Provider:   r.Provider,
		Model:      r.Model,
		Base:       r.Base,
		Head:       r.Head,
		TokensUsed: r.TokensUsed,
		Redacted:   r.Redacted,
		DurationMs: r.Timing.Total.Milliseconds(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if _, err := fmt.Fprintf(j.Out, "%s\n", data); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	return nil
}
