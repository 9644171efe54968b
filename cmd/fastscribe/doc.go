// Package main hosts the FastScribe CLI entrypoint and command graph.
//
// The Cobra command tree resolves video references, drives the transcription
// fallback pipeline, turns transcripts into study notes and flashcards, runs
// the remote transcription worker, and checks the host for the binaries the
// pipeline shells out to. Configuration loading, logger construction, and
// request ids are centralized in commandContext so subcommands only wire
// internal packages together.
package main
