// Package notes turns transcripts into study notes through an
// OpenAI-compatible chat completion endpoint.
//
// The flashcards style asks the model for "Q:" / "A:" pairs, which is the
// input internal/flashcards parses. The other styles (detailed, summary,
// bullet_points) produce prose the CLI prints as-is.
//
// # Credentials
//
// The client holds no API key. Each call receives one, normally taken from a
// rotating credentials.Pool so consecutive runs spread load across keys.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, network timeouts and empty
// completions with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). A Retry-After header overrides the computed delay. Context
// cancellation aborts retries immediately.
package notes
