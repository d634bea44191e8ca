// Package github posts review results to pull requests through the GitHub
// REST API.
//
// It authenticates with a token (GITHUB_TOKEN in CI) and resolves the
// target repository and pull request number from git remotes and the
// GITHUB_REF variable that Actions sets for pull_request events.
package github
