// Package transcribe turns a resolved video reference into a transcript by
// downloading its audio once and handing it to an ordered list of backends.
//
// # Backends
//
// Each backend (remote worker, cloud API, local WhisperX) implements Backend.
// An attempt yields exactly one Outcome: a transcript, a recoverable failure
// that moves on to the next backend, or a fatal failure that stops the run.
// The local engine only participates when the run opts in (Options.Local).
//
// # Errors
//
// Acquisition failures are returned unchanged (they wrap the ytdlp markers
// from internal/services). When every backend fails recoverably the result is
// an *ExhaustedError; a fatal backend failure yields a *BackendError. Both
// carry the ordered attempt history.
//
// # Workspace
//
// Every run gets its own temporary directory under the configured work root.
// It is removed when GetTranscript returns, whatever the outcome.
package transcribe
