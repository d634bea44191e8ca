package output

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/aireview/internal/review"
)

type comment struct {
	owner, repo string
	number      int
	body        string
}

type fakePoster struct {
	posted []comment
	err    error
}

func (f *fakePoster) PostComment(_ context.Context, owner, repo string, number int, body string) error {
	if f.err != nil {
		return f.err
	}
	f.posted = append(f.posted, comment{owner, repo, number, body})
	return nil
}

func TestGitHub_PostsAndEchoes(t *testing.T) {
	var buf bytes.Buffer
	poster := &fakePoster{}
	g := &GitHub{Poster: poster, Owner: "acme", Repo: "widgets", PR: 42, Echo: &Console{Out: &buf}}

	require.NoError(t, g.Report(context.Background(), review.Result{Text: "Looks good."}))
	require.Len(t, poster.posted, 1)
	assert.Equal(t, comment{"acme", "widgets", 42, "## AI Summary\n\nLooks good."}, poster.posted[0])
	assert.Equal(t, "AI Summary:\n Looks good.\n", buf.String())
}

func TestGitHub_PostFailureSkipsEcho(t *testing.T) {
	var buf bytes.Buffer
	g := &GitHub{Poster: &fakePoster{err: errors.New("boom")}, Owner: "o", Repo: "r", PR: 1, Echo: &Console{Out: &buf}}

	assert.EqualError(t, g.Report(context.Background(), review.Result{Text: "x"}), "boom")
	assert.Empty(t, buf.String())
}
