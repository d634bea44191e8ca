package output

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"

	"github.com/dshills/aireview/internal/review"
)

// Label precedes the review text on the console.
const Label = "AI Summary:"

const defaultWrap = 100

// Console prints the label and the review text. The text is written
// verbatim unless Markdown is set, in which case it is rendered for a
// terminal first.
type Console struct {
	Out      io.Writer
	Markdown bool
	// Style is a glamour style name; empty picks one from the terminal.
	Style string
	Wrap  int
}

func (c *Console) Report(_ context.Context, r review.Result) error {
	text := r.Text
	if c.Markdown {
		rendered, err := c.render(text)
		if err != nil {
			return err
		}
		text = rendered
	}
	if _, err := fmt.Fprintf(c.Out, "%s\n %s\n", Label, text); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

func (c *Console) render(text string) (string, error) {
	wrap := c.Wrap
	if wrap <= 0 {
		wrap = defaultWrap
	}
	style := glamour.WithAutoStyle()
	if c.Style != "" {
		style = glamour.WithStandardStyle(c.Style)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(wrap))
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(text)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}
