package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/dshills/aireview/internal/logger"
)

// ErrUnauthorized is returned when GitHub rejects the token.
var ErrUnauthorized = errors.New("github rejected the token")

// ErrNoPullRequest is returned when no pull request number can be found.
var ErrNoPullRequest = errors.New("no pull request number")

// Client posts comments on pull requests.
type Client struct {
	issues *gh.IssuesService
	logger *slog.Logger
}

// NewClient returns a Client authenticated with token. apiURL overrides the
// public API endpoint for GitHub Enterprise; empty means api.github.com.
func NewClient(ctx context.Context, token, apiURL string, log *slog.Logger) (*Client, error) {
	if token == "" {
		return nil, errors.New("GITHUB_TOKEN is not set")
	}
	if log == nil {
		log = logger.Discard()
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := gh.NewClient(oauth2.NewClient(ctx, ts))
	if apiURL != "" {
		u, err := url.Parse(strings.TrimRight(apiURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub API URL: %w", err)
		}
		client.BaseURL = u
	}
	return &Client{issues: client.Issues, logger: log}, nil
}

// PostComment adds body as a comment on pull request number.
func (c *Client) PostComment(ctx context.Context, owner, repo string, number int, body string) error {
	comment := &gh.IssueComment{Body: gh.Ptr(body)}
	created, _, err := c.issues.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		var respErr *gh.ErrorResponse
		if errors.As(err, &respErr) && respErr.Response != nil {
			switch respErr.Response.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				return fmt.Errorf("%w: %s", ErrUnauthorized, respErr.Message)
			case http.StatusNotFound:
				return fmt.Errorf("PR #%d not found in %s/%s", number, owner, repo)
			}
		}
		return fmt.Errorf("posting comment to %s/%s#%d: %w", owner, repo, number, err)
	}
	c.logger.Debug("posted review comment", "owner", owner, "repo", repo, "pr", number, "url", created.GetHTMLURL())
	return nil
}

var (
	httpsRemoteRe = regexp.MustCompile(`https?://[^/]+/([^/]+)/([^/\s]+)$`)
	sshRemoteRe   = regexp.MustCompile(`[^@]+@[^:]+:([^/]+)/([^/\s]+)$`)
	pullRefRe     = regexp.MustCompile(`^refs/pull/(\d+)/(?:merge|head)$`)
)

// ParseRemoteURL extracts owner/repo from a git remote URL.
func ParseRemoteURL(remote string) (owner, repo string, err error) {
	remote = strings.TrimSuffix(strings.TrimSpace(remote), ".git")

	if m := httpsRemoteRe.FindStringSubmatch(remote); len(m) == 3 {
		return m[1], m[2], nil
	}
	if m := sshRemoteRe.FindStringSubmatch(remote); len(m) == 3 {
		return m[1], m[2], nil
	}
	return "", "", fmt.Errorf("cannot parse owner/repo from remote URL: %s", remote)
}

// PRFromRef returns the pull request number in a ref such as
// refs/pull/42/merge.
func PRFromRef(ref string) (int, error) {
	m := pullRefRe.FindStringSubmatch(ref)
	if m == nil {
		return 0, fmt.Errorf("%w in ref %q", ErrNoPullRequest, ref)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w in ref %q", ErrNoPullRequest, ref)
	}
	return n, nil
}
