package services

import (
	"errors"
	"fmt"
	"strings"
)

// Acquisition and validation markers. Every error surfaced by the pipeline
// wraps exactly one of these so callers can branch with errors.Is.
var (
	ErrInvalidReference = errors.New("invalid video reference")
	ErrFatalConfig      = errors.New("fatal configuration error")
	ErrPrivateVideo     = errors.New("video is private")
	ErrNotTranscribable = errors.New("video is not transcribable")
	ErrNoAudio          = errors.New("video has no audio track")
	ErrAuthRequired     = errors.New("authentication required")
	ErrAcquisition      = errors.New("audio acquisition failed")
	ErrExhausted        = errors.New("all transcription backends failed")
	ErrFinalBackend     = errors.New("final transcription backend failed")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrAcquisition
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Recoverable reports whether the caller may retry the operation that produced
// err. Authentication and generic acquisition failures are retryable (for
// example with cookies supplied); private, live, silent and config failures are
// not.
func Recoverable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrPrivateVideo),
		errors.Is(err, ErrNotTranscribable),
		errors.Is(err, ErrNoAudio),
		errors.Is(err, ErrInvalidReference),
		errors.Is(err, ErrFatalConfig),
		errors.Is(err, ErrFinalBackend):
		return false
	case errors.Is(err, ErrAuthRequired),
		errors.Is(err, ErrAcquisition),
		errors.Is(err, ErrExhausted):
		return true
	default:
		return false
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
