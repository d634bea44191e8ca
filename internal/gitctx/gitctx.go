package gitctx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"unicode/utf8"
)

// Backend names accepted by [New].
const (
	BackendExec  = "exec"
	BackendGoGit = "go-git"
)

// ErrNotText is returned when the diff output is not valid UTF-8.
var ErrNotText = errors.New("diff output is not valid UTF-8 text")

// ErrBadRef is returned for references that would be parsed as git options.
var ErrBadRef = errors.New("reference must not start with '-'")

// Differ produces the diff between two references.
type Differ interface {
	Diff(ctx context.Context, base, head string) (string, error)
}

// Repo is a Differ that can also describe the repository it reads from.
type Repo interface {
	Differ
	Meta(ctx context.Context) (RepoMeta, error)
	RemoteURL(ctx context.Context, name string) (string, error)
}

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// DiffError reports a failed diff retrieval.
type DiffError struct {
	Backend string
	Base    string
	Head    string
	Stderr  string
	Err     error
}

func (e *DiffError) Error() string {
	msg := fmt.Sprintf("git diff %s...%s (%s): %v", e.Base, e.Head, e.Backend, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *DiffError) Unwrap() error { return e.Err }

// New returns the Repo implementation for backend, rooted at dir. An empty
// dir means the process working directory.
func New(backend, dir string) (Repo, error) {
	switch backend {
	case BackendExec, "":
		return NewExecRepo(dir), nil
	case BackendGoGit:
		return NewGoGitRepo(dir), nil
	default:
		return nil, fmt.Errorf("unknown diff backend: %s", backend)
	}
}

// Runner executes git with args in dir and returns its stdout and stderr.
type Runner func(ctx context.Context, dir string, args ...string) (stdout, stderr []byte, err error)

// ExecRepo reads diffs by running the git binary.
type ExecRepo struct {
	Dir string
	Run Runner
}

// NewExecRepo returns an ExecRepo using the system git.
func NewExecRepo(dir string) *ExecRepo {
	return &ExecRepo{Dir: dir, Run: runGit}
}

func runGit(ctx context.Context, dir string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Diff runs `git diff --no-color <base>...<head>`.
func (r *ExecRepo) Diff(ctx context.Context, base, head string) (string, error) {
	if err := checkRefs(base, head); err != nil {
		return "", &DiffError{Backend: BackendExec, Base: base, Head: head, Err: err}
	}
	out, stderr, err := r.Run(ctx, r.Dir, "diff", "--no-color", base+"..."+head)
	if err != nil {
		return "", &DiffError{
			Backend: BackendExec,
			Base:    base,
			Head:    head,
			Stderr:  strings.TrimSpace(string(stderr)),
			Err:     err,
		}
	}
	if !utf8.Valid(out) {
		return "", &DiffError{Backend: BackendExec, Base: base, Head: head, Err: ErrNotText}
	}
	return string(out), nil
}

// Meta collects repository metadata. Missing HEAD or branch (a repository
// with no commits) is not an error.
func (r *ExecRepo) Meta(ctx context.Context) (RepoMeta, error) {
	root, err := r.output(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	head, _ := r.output(ctx, "rev-parse", "HEAD")
	branch, _ := r.output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	return RepoMeta{Root: root, Head: head, Branch: branch}, nil
}

// RemoteURL returns the fetch URL of the named remote.
func (r *ExecRepo) RemoteURL(ctx context.Context, name string) (string, error) {
	url, err := r.output(ctx, "remote", "get-url", name)
	if err != nil {
		return "", fmt.Errorf("git remote get-url %s: %w", name, err)
	}
	return url, nil
}

func (r *ExecRepo) output(ctx context.Context, args ...string) (string, error) {
	out, stderr, err := r.Run(ctx, r.Dir, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func checkRefs(refs ...string) error {
	for _, ref := range refs {
		if strings.HasPrefix(ref, "-") {
			return fmt.Errorf("%w: %q", ErrBadRef, ref)
		}
	}
	return nil
}
