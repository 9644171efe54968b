package transcribe

import (
	"context"
	"time"

	"fastscribe/internal/videoref"
	"fastscribe/internal/ytdlp"
)

// Kind names a transcription backend.
type Kind string

// Backend kinds. The string values match config backends.order entries.
const (
	KindWorker Kind = "worker"
	KindCloud  Kind = "cloud"
	KindLocal  Kind = "local"
)

// Status is the result class of one backend attempt.
type Status int

const (
	StatusSuccess Status = iota
	StatusRecoverable
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRecoverable:
		return "recoverable"
	case StatusFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Outcome is what a backend returns: a transcript on success, otherwise the
// failure reason.
type Outcome struct {
	Status     Status
	Transcript Transcript
	Reason     error
}

// Success wraps a completed transcript.
func Success(t Transcript) Outcome {
	return Outcome{Status: StatusSuccess, Transcript: t}
}

// Recoverable reports a failure after which the next backend may be tried.
func Recoverable(reason error) Outcome {
	return Outcome{Status: StatusRecoverable, Reason: reason}
}

// Fatal reports a failure that ends the run.
func Fatal(reason error) Outcome {
	return Outcome{Status: StatusFatal, Reason: reason}
}

// Job is the input handed to a backend.
type Job struct {
	Ref       videoref.Reference
	AudioPath string
	Language  string
	// WorkDir is a scratch directory private to this attempt.
	WorkDir string
	// Final is true for the last backend of the run.
	Final bool
}

// Backend is one transcription strategy.
type Backend interface {
	Kind() Kind
	// Available reports whether the backend is configured at all.
	Available() bool
	Attempt(ctx context.Context, job Job) Outcome
}

// Attempt records one backend try.
type Attempt struct {
	Backend  Kind
	Profile  ytdlp.Profile
	Outcome  Status
	Reason   string
	Duration time.Duration
}

// Transcript is the pipeline's output.
type Transcript struct {
	VideoID  string `json:"video_id"`
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	Backend  Kind   `json:"backend"`
}

// Options adjust one GetTranscript call.
type Options struct {
	// Language is an optional hint such as "en" or "Spanish".
	Language string
	// Cookies selects the download authentication profile.
	Cookies ytdlp.CookieSource
	// Local allows the on-host engine to run.
	Local bool
}

// AudioSource downloads a video's audio track.
type AudioSource interface {
	DownloadAudio(ctx context.Context, req ytdlp.AudioRequest) (string, error)
}
