package output

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/aireview/internal/config"
	"github.com/dshills/aireview/internal/github"
)

type fakeRemote struct {
	url string
	err error
}

func (f fakeRemote) RemoteURL(context.Context, string) (string, error) { return f.url, f.err }

func TestNew_Selects(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()

	r, err := New(context.Background(), cfg, Deps{Stdout: &buf})
	require.NoError(t, err)
	assert.IsType(t, &Console{}, r)
	assert.False(t, r.(*Console).Markdown)

	cfg.Render = "markdown"
	r, err = New(context.Background(), cfg, Deps{Stdout: &buf})
	require.NoError(t, err)
	assert.True(t, r.(*Console).Markdown)

	cfg.Reporter = "json"
	r, err = New(context.Background(), cfg, Deps{Stdout: &buf})
	require.NoError(t, err)
	assert.IsType(t, &JSON{}, r)

	cfg.Reporter = "fax"
	_, err = New(context.Background(), cfg, Deps{Stdout: &buf})
	assert.EqualError(t, err, "unsupported reporter: fax")
}

func TestNew_GitHubFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Reporter = "github"
	cfg.GitHub.Owner = "acme"
	cfg.GitHub.Repo = "widgets"
	cfg.GitHub.PR = 9
	cfg.GitHub.Token = "tok"

	r, err := New(context.Background(), cfg, Deps{Stdout: &bytes.Buffer{}})
	require.NoError(t, err)
	g := r.(*GitHub)
	assert.Equal(t, "acme", g.Owner)
	assert.Equal(t, "widgets", g.Repo)
	assert.Equal(t, 9, g.PR)
	assert.IsType(t, &github.Client{}, g.Poster)
	assert.IsType(t, &Console{}, g.Echo)
}

func TestNew_GitHubFromRemoteAndRef(t *testing.T) {
	cfg := config.Default()
	cfg.Reporter = "github"
	cfg.GitHub.Ref = "refs/pull/42/merge"
	poster := &fakePoster{}

	r, err := New(context.Background(), cfg, Deps{
		Stdout: &bytes.Buffer{},
		Remote: fakeRemote{url: "git@github.com:acme/widgets.git"},
		Poster: poster,
	})
	require.NoError(t, err)
	g := r.(*GitHub)
	assert.Equal(t, "acme", g.Owner)
	assert.Equal(t, "widgets", g.Repo)
	assert.Equal(t, 42, g.PR)
	assert.Same(t, poster, g.Poster)
}

func TestNew_GitHubTargetErrors(t *testing.T) {
	base := config.Default()
	base.Reporter = "github"

	tests := []struct {
		name   string
		mutate func(*config.Config)
		remote RemoteResolver
	}{
		{"no remote", func(c *config.Config) { c.GitHub.PR = 1; c.GitHub.Token = "t" }, nil},
		{"remote lookup fails", func(c *config.Config) { c.GitHub.PR = 1; c.GitHub.Token = "t" }, fakeRemote{err: errors.New("no such remote")}},
		{"unparsable remote", func(c *config.Config) { c.GitHub.PR = 1; c.GitHub.Token = "t" }, fakeRemote{url: "/srv/git/repo"}},
		{"no pr", func(c *config.Config) { c.GitHub.Owner, c.GitHub.Repo, c.GitHub.Token = "o", "r", "t" }, nil},
		{"branch ref", func(c *config.Config) {
			c.GitHub.Owner, c.GitHub.Repo, c.GitHub.Token, c.GitHub.Ref = "o", "r", "t", "refs/heads/main"
		}, nil},
		{"no token", func(c *config.Config) { c.GitHub.Owner, c.GitHub.Repo, c.GitHub.PR = "o", "r", 1 }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			_, err := New(context.Background(), cfg, Deps{Stdout: &bytes.Buffer{}, Remote: tt.remote})
			assert.ErrorIs(t, err, ErrGitHubTarget)
		})
	}
}
