// Package providers implements the Reviewer interface for each supported
// text-generation API.
//
// Supported providers: Google Gemini (the default), OpenAI, Anthropic, and
// Ollama / LM Studio through their OpenAI-compatible endpoint.
//
// Every provider is built from an explicit [Options] value: the API key is
// handed to the constructor rather than read from global state, and a
// provider that needs a key refuses to construct without one, so no request
// is ever sent unauthenticated. Requests carry a fixed timeout and are not
// retried unless Options.MaxRetries is set; only rate-limit and server
// errors are retried.
//
// Use [New] to obtain a Reviewer by provider name.
package providers
