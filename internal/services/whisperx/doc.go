// Package whisperx runs WhisperX through uvx as the on-host transcription
// engine.
//
// This package handles:
//   - Audio preparation (any container to mono 16kHz WAV via ffmpeg)
//   - WhisperX invocation with CPU or CUDA settings
//   - Transcript text and detected language extraction from the JSON output
//
// Inference is serialized across processes on one host with a file lock
// (Config.LockPath), so the CLI and a worker server never run two models at
// once. Transcription is synchronous and has no timeout of its own; callers
// bound it with their context if they want one.
package whisperx
