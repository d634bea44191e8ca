// Aireview asks a language model to review the current branch.
//
// It diffs the branch against its base (origin/main by default) using
// merge-base semantics, prefixes the diff with a short review instruction,
// sends it to the configured provider and prints the reply.
//
// Usage:
//
//	aireview                              # review HEAD against origin/main
//	aireview --base origin/develop        # pick another base
//	aireview --reporter github            # comment on the pull request (CI)
//	aireview config init                  # write a default config file
//
// The API key is read from GOOGLE_API_KEY (or the provider's equivalent).
package main
