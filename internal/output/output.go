package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dshills/aireview/internal/config"
	"github.com/dshills/aireview/internal/github"
	"github.com/dshills/aireview/internal/review"
)

// ErrGitHubTarget is returned when the github reporter cannot determine
// where to post.
var ErrGitHubTarget = errors.New("cannot determine GitHub target")

// RemoteResolver looks up a git remote URL.
type RemoteResolver interface {
	RemoteURL(ctx context.Context, name string) (string, error)
}

// Deps are the collaborators New may need.
type Deps struct {
	Stdout io.Writer
	Remote RemoteResolver
	Logger *slog.Logger
	// Poster overrides the GitHub client built from the configured token.
	Poster CommentPoster
}

// New returns the reporter selected by cfg.Reporter. The github reporter
// resolves its token, repository and pull request here so a
// misconfiguration surfaces before any review is requested.
func New(ctx context.Context, cfg config.Config, deps Deps) (review.Reporter, error) {
	out := deps.Stdout
	if out == nil {
		out = os.Stdout
	}
	console := &Console{Out: out, Markdown: cfg.Render == "markdown"}

	switch cfg.Reporter {
	case "console", "":
		return console, nil
	case "json":
		return &JSON{Out: out}, nil
	case "github":
		return newGitHub(ctx, cfg, deps, console)
	default:
		// Reached only by callers that skip config.Validate.
		return nil, fmt.Errorf("unsupported reporter: %s", cfg.Reporter)
	}
}

func newGitHub(ctx context.Context, cfg config.Config, deps Deps, echo review.Reporter) (*GitHub, error) {
	gc := cfg.GitHub

	owner, repo := gc.Owner, gc.Repo
	if owner == "" || repo == "" {
		if deps.Remote == nil {
			return nil, fmt.Errorf("%w: set github.owner and github.repo", ErrGitHubTarget)
		}
		url, err := deps.Remote.RemoteURL(ctx, "origin")
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrGitHubTarget, err)
		}
		o, r, err := github.ParseRemoteURL(url)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrGitHubTarget, err)
		}
		if owner == "" {
			owner = o
		}
		if repo == "" {
			repo = r
		}
	}

	pr := gc.PR
	if pr == 0 {
		n, err := github.PRFromRef(gc.Ref)
		if err != nil {
			return nil, fmt.Errorf("%w: set github.pr or GITHUB_REF: %w", ErrGitHubTarget, err)
		}
		pr = n
	}

	poster := deps.Poster
	if poster == nil {
		client, err := github.NewClient(ctx, gc.Token, gc.APIURL, deps.Logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrGitHubTarget, err)
		}
		poster = client
	}

	return &GitHub{Poster: poster, Owner: owner, Repo: repo, PR: pr, Echo: echo}, nil
}
