package main

import (
	"errors"

	"fastscribe/internal/services"
)

// Exit codes distinguish "fix your input or setup" from "try again later".
const (
	exitFailure     = 1
	exitUserError   = 2
	exitRecoverable = 3
)

var errorHints = []struct {
	marker error
	hint   string
}{
	{services.ErrInvalidReference, "pass a youtube.com/watch, youtu.be, or embed URL, or an 11-character video id"},
	{services.ErrFatalConfig, "run `fastscribe doctor` and `fastscribe config validate` to find the missing setting"},
	{services.ErrPrivateVideo, "the video is private; it cannot be transcribed"},
	{services.ErrNotTranscribable, "live streams and upcoming premieres cannot be transcribed; retry after the broadcast ends"},
	{services.ErrNoAudio, "the video has no audio track"},
	{services.ErrAuthRequired, "YouTube wants a signed-in session; retry with --cookies <browser> or --cookies <cookies.txt>"},
	{services.ErrAcquisition, "audio download failed; update yt-dlp or retry with --cookies"},
	{services.ErrExhausted, "every backend failed; check worker.url, API credentials, or retry with --local"},
	{services.ErrFinalBackend, "the last transcription backend failed; see the log for its error"},
}

// errorHint maps a pipeline error to a suggested next step.
func errorHint(err error) string {
	if err == nil {
		return ""
	}
	for _, entry := range errorHints {
		if errors.Is(err, entry.marker) {
			return entry.hint
		}
	}
	return ""
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, services.ErrInvalidReference), errors.Is(err, services.ErrFatalConfig):
		return exitUserError
	case services.Recoverable(err):
		return exitRecoverable
	default:
		return exitFailure
	}
}
