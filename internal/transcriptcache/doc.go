// Package transcriptcache persists finished transcripts in SQLite so that
// re-running the pipeline for a video skips audio download and transcription.
//
// Entries are keyed by video id and the language hint the run was started
// with ("" for auto-detect). The detected language is stored alongside. The
// store is caller-side; the transcription orchestrator itself stays stateless.
package transcriptcache
