// Package gitctx retrieves the textual diff under review.
//
// Two backends implement [Repo]: [ExecRepo] shells out to the git binary and
// [GoGitRepo] uses the go-git library. Both compare with merge-base
// ("three-dot") semantics, equivalent to `git diff origin/main...HEAD`, and
// return the unified diff untouched. Any failure is reported as a
// [*DiffError].
package gitctx
