package output

import (
	"context"

	"github.com/dshills/aireview/internal/review"
)

// CommentHeading starts every pull request comment.
const CommentHeading = "## AI Summary\n\n"

// CommentPoster posts a comment on a pull request.
type CommentPoster interface {
	PostComment(ctx context.Context, owner, repo string, number int, body string) error
}

// GitHub posts the result as a pull request comment, then hands it to Echo
// when set.
type GitHub struct {
	Poster CommentPoster
	Owner  string
	Repo   string
	PR     int
	Echo   review.Reporter
}

func (g *GitHub) Report(ctx context.Context, r review.Result) error {
	if err := g.Poster.PostComment(ctx, g.Owner, g.Repo, g.PR, CommentHeading+r.Text); err != nil {
		return err
	}
	if g.Echo != nil {
		return g.Echo.Report(ctx, r)
	}
	return nil
}
