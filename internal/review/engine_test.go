package review

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/aireview/internal/providers"
)

type fakeDiffer struct {
	diff      string
	err       error
	gotBase   string
	gotHead   string
	callCount int
}

func (f *fakeDiffer) Diff(_ context.Context, base, head string) (string, error) {
	f.callCount++
	f.gotBase, f.gotHead = base, head
	return f.diff, f.err
}

type fakeReviewer struct {
	reply    string
	tokens   int
	err      error
	requests []providers.ReviewRequest
}

func (f *fakeReviewer) Review(_ context.Context, req providers.ReviewRequest) (providers.ReviewResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return providers.ReviewResponse{}, f.err
	}
	return providers.ReviewResponse{Content: f.reply, TokensUsed: f.tokens}, nil
}

func (f *fakeReviewer) Name() string { return "fake" }

type recordingReporter struct {
	results []Result
	err     error
}

func (r *recordingReporter) Report(_ context.Context, res Result) error {
	r.results = append(r.results, res)
	return r.err
}

func TestPipeline_Run(t *testing.T) {
	differ := &fakeDiffer{diff: "+x := 1\n"}
	reviewer := &fakeReviewer{reply: "Looks good.", tokens: 42}
	reporter := &recordingReporter{}

	p := &Pipeline{Differ: differ, Reviewer: reviewer, Reporter: reporter, Model: "gemini-2.0-flash", MaxTokens: 512, Temperature: 0.3}
	res, err := p.Run(context.Background(), "origin/main", "HEAD")
	require.NoError(t, err)

	assert.Equal(t, "origin/main", differ.gotBase)
	assert.Equal(t, "HEAD", differ.gotHead)
	require.Len(t, reviewer.requests, 1)
	assert.Equal(t, Instruction+"+x := 1\n", reviewer.requests[0].Prompt)
	assert.Equal(t, 512, reviewer.requests[0].MaxTokens)
	assert.InDelta(t, 0.3, reviewer.requests[0].Temperature, 1e-9)

	require.Len(t, reporter.results, 1)
	assert.Equal(t, res, reporter.results[0])
	assert.Equal(t, "Looks good.", res.Text)
	assert.Equal(t, "fake", res.Provider)
	assert.Equal(t, "gemini-2.0-flash", res.Model)
	assert.Equal(t, 42, res.TokensUsed)
	assert.Zero(t, res.Redacted)
}

func TestPipeline_EmptyDiffIsStillReviewed(t *testing.T) {
	reviewer := &fakeReviewer{reply: "Nothing to review."}
	p := &Pipeline{Differ: &fakeDiffer{}, Reviewer: reviewer, Reporter: &recordingReporter{}}

	_, err := p.Run(context.Background(), "origin/main", "HEAD")
	require.NoError(t, err)
	require.Len(t, reviewer.requests, 1)
	assert.Equal(t, "You're a code reviewer. Review this code diff and give concise feedback:\n\n", reviewer.requests[0].Prompt)
}

func TestPipeline_DiffFailureStopsBeforeReview(t *testing.T) {
	diffErr := &errDiff{}
	reviewer := &fakeReviewer{reply: "unused"}
	reporter := &recordingReporter{}
	p := &Pipeline{Differ: &fakeDiffer{err: diffErr}, Reviewer: reviewer, Reporter: reporter}

	_, err := p.Run(context.Background(), "origin/main", "HEAD")
	require.Error(t, err)
	assert.ErrorIs(t, err, diffErr)
	assert.Empty(t, reviewer.requests, "no API call after a diff failure")
	assert.Empty(t, reporter.results, "nothing reported after a diff failure")
}

func TestPipeline_ReviewFailureSkipsReporter(t *testing.T) {
	apiErr := &providers.APIError{Provider: "fake", StatusCode: 500, Message: "boom"}
	reporter := &recordingReporter{}
	p := &Pipeline{Differ: &fakeDiffer{diff: "+a\n"}, Reviewer: &fakeReviewer{err: apiErr}, Reporter: reporter}

	_, err := p.Run(context.Background(), "origin/main", "HEAD")
	var target *providers.APIError
	require.ErrorAs(t, err, &target)
	assert.Empty(t, reporter.results)
}

func TestPipeline_ReporterErrorIsReturned(t *testing.T) {
	p := &Pipeline{
		Differ:   &fakeDiffer{diff: "+a\n"},
		Reviewer: &fakeReviewer{reply: "ok"},
		Reporter: &recordingReporter{err: errors.New("stdout closed")},
	}
	res, err := p.Run(context.Background(), "origin/main", "HEAD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdout closed")
	assert.Equal(t, "ok", res.Text)
}

func TestPipeline_TextReachesReporterUnmodified(t *testing.T) {
	reply := "  **Summary**\n\n- trailing spaces   \n- tabs\there\n\n"
	reporter := &recordingReporter{}
	p := &Pipeline{Differ: &fakeDiffer{diff: "+a\n"}, Reviewer: &fakeReviewer{reply: reply}, Reporter: reporter}

	_, err := p.Run(context.Background(), "origin/main", "HEAD")
	require.NoError(t, err)
	require.Len(t, reporter.results, 1)
	assert.Equal(t, reply, reporter.results[0].Text)
}

func TestPipeline_RedactIsOptIn(t *testing.T) {
	diff := "+OPENAI=sk-abcdefghijklmnopqrstuvwxyz\n"

	t.Run("off", func(t *testing.T) {
		reviewer := &fakeReviewer{reply: "ok"}
		p := &Pipeline{Differ: &fakeDiffer{diff: diff}, Reviewer: reviewer, Reporter: &recordingReporter{}}
		_, err := p.Run(context.Background(), "b", "h")
		require.NoError(t, err)
		assert.Equal(t, Instruction+diff, reviewer.requests[0].Prompt)
	})

	t.Run("on", func(t *testing.T) {
		reviewer := &fakeReviewer{reply: "ok"}
		p := &Pipeline{Differ: &fakeDiffer{diff: diff}, Reviewer: reviewer, Reporter: &recordingReporter{}, Redact: true}
		res, err := p.Run(context.Background(), "b", "h")
		require.NoError(t, err)
		assert.Equal(t, Instruction+"+OPENAI=[REDACTED]\n", reviewer.requests[0].Prompt)
		assert.Equal(t, 1, res.Redacted)
	})
}

func TestPipeline_MissingStage(t *testing.T) {
	_, err := (&Pipeline{Differ: &fakeDiffer{}}).Run(context.Background(), "b", "h")
	assert.Error(t, err)
}

type errDiff struct{}

func (*errDiff) Error() string { return "git diff: exit status 128" }
