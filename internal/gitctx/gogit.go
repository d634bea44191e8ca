package gitctx

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNoMergeBase is returned when base and head share no history.
var ErrNoMergeBase = errors.New("no merge base")

// GoGitRepo reads diffs through go-git without spawning processes.
type GoGitRepo struct {
	Dir string
}

// NewGoGitRepo returns a GoGitRepo rooted at dir (or the working directory).
func NewGoGitRepo(dir string) *GoGitRepo {
	if dir == "" {
		dir = "."
	}
	return &GoGitRepo{Dir: dir}
}

func (r *GoGitRepo) open() (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(r.Dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", r.Dir, err)
	}
	return repo, nil
}

// Diff renders the patch between the merge base of base and head, and head.
func (r *GoGitRepo) Diff(ctx context.Context, base, head string) (string, error) {
	fail := func(err error) (string, error) {
		return "", &DiffError{Backend: BackendGoGit, Base: base, Head: head, Err: err}
	}
	if err := checkRefs(base, head); err != nil {
		return fail(err)
	}

	repo, err := r.open()
	if err != nil {
		return fail(err)
	}
	baseCommit, err := resolveCommit(repo, base)
	if err != nil {
		return fail(err)
	}
	headCommit, err := resolveCommit(repo, head)
	if err != nil {
		return fail(err)
	}

	bases, err := baseCommit.MergeBase(headCommit)
	if err != nil {
		return fail(fmt.Errorf("computing merge base: %w", err))
	}
	if len(bases) == 0 {
		return fail(ErrNoMergeBase)
	}

	patch, err := bases[0].PatchContext(ctx, headCommit)
	if err != nil {
		return fail(fmt.Errorf("computing patch: %w", err))
	}
	out := patch.String()
	if !utf8.ValidString(out) {
		return fail(ErrNotText)
	}
	return out, nil
}

func resolveCommit(repo *git.Repository, rev string) (*object.Commit, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("loading commit %s: %w", hash, err)
	}
	return commit, nil
}

// Meta collects repository metadata.
func (r *GoGitRepo) Meta(_ context.Context) (RepoMeta, error) {
	repo, err := r.open()
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	var meta RepoMeta
	if wt, err := repo.Worktree(); err == nil {
		meta.Root = wt.Filesystem.Root()
	}
	ref, err := repo.Head()
	if err != nil {
		// unborn branch
		return meta, nil
	}
	meta.Head = ref.Hash().String()
	if ref.Name().IsBranch() {
		meta.Branch = ref.Name().Short()
	} else {
		meta.Branch = "HEAD"
	}
	return meta, nil
}

// RemoteURL returns the first configured URL of the named remote.
func (r *GoGitRepo) RemoteURL(_ context.Context, name string) (string, error) {
	repo, err := r.open()
	if err != nil {
		return "", err
	}
	remote, err := repo.Remote(name)
	if err != nil {
		return "", fmt.Errorf("remote %s: %w", name, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no URL", name)
	}
	return urls[0], nil
}
