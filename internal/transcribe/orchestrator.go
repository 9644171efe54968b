package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	langpkg "fastscribe/internal/language"
	"fastscribe/internal/logging"
	"fastscribe/internal/services"
	"fastscribe/internal/videoref"
	"fastscribe/internal/ytdlp"
)

// Orchestrator drives audio acquisition and the backend fallback chain.
type Orchestrator struct {
	audio    AudioSource
	backends []Backend
	workRoot string
	logger   *slog.Logger
}

// Option customizes the orchestrator.
type Option func(*Orchestrator)

// WithWorkRoot sets the directory per-run workspaces are created under.
func WithWorkRoot(dir string) Option {
	return func(o *Orchestrator) {
		o.workRoot = dir
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New builds an orchestrator that tries backends in the given order.
func New(audio AudioSource, backends []Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		audio:    audio,
		backends: append([]Backend(nil), backends...),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.NewComponentLogger(o.logger, "transcribe")
	return o
}

// Plan returns the kinds that would run for opts, in order.
func (o *Orchestrator) Plan(opts Options) []Kind {
	eligible := o.eligible(opts)
	kinds := make([]Kind, 0, len(eligible))
	for _, b := range eligible {
		kinds = append(kinds, b.Kind())
	}
	return kinds
}

func (o *Orchestrator) eligible(opts Options) []Backend {
	out := make([]Backend, 0, len(o.backends))
	for _, b := range o.backends {
		if b == nil || !b.Available() {
			continue
		}
		if b.Kind() == KindLocal && !opts.Local {
			continue
		}
		out = append(out, b)
	}
	return out
}

// GetTranscript downloads the audio for ref once and runs the eligible
// backends in order until one succeeds or one fails fatally.
func (o *Orchestrator) GetTranscript(ctx context.Context, ref videoref.Reference, opts Options) (Transcript, error) {
	if !videoref.ValidID(ref.ID) {
		return Transcript{}, services.Wrap(services.ErrInvalidReference, "transcribe", "validate", fmt.Sprintf("invalid video id %q", ref.ID), nil)
	}
	backends := o.eligible(opts)
	if len(backends) == 0 {
		return Transcript{}, services.Wrap(services.ErrFatalConfig, "transcribe", "select backends", "no transcription backend is available for this run", nil)
	}
	if o.audio == nil {
		return Transcript{}, services.Wrap(services.ErrFatalConfig, "transcribe", "select backends", "no audio downloader configured", nil)
	}

	ctx = services.WithVideoID(ctx, ref.ID)
	logger := logging.WithContext(ctx, o.logger)
	profile := opts.Cookies.Profile()

	root := o.workRoot
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return Transcript{}, services.Wrap(services.ErrFatalConfig, "transcribe", "workspace", "create work root", err)
	}
	workspace, err := os.MkdirTemp(root, "fastscribe-"+ref.ID+"-")
	if err != nil {
		return Transcript{}, services.Wrap(services.ErrFatalConfig, "transcribe", "workspace", "create workspace", err)
	}
	defer func() {
		if err := os.RemoveAll(workspace); err != nil {
			logger.Warn("workspace cleanup failed", logging.String("path", workspace), logging.Error(err))
		}
	}()

	logger.Info("downloading audio",
		logging.String(logging.FieldEventType, "audio_download"),
		logging.String("profile", profile.String()),
	)
	started := time.Now()
	audioPath, err := o.audio.DownloadAudio(ctx, ytdlp.AudioRequest{
		VideoURL:  ref.URL(),
		VideoID:   ref.ID,
		OutputDir: filepath.Join(workspace, "audio"),
		Cookies:   opts.Cookies,
	})
	if err != nil {
		return Transcript{}, err
	}
	logger.Info("audio downloaded",
		logging.String("audio_path", filepath.Base(audioPath)),
		logging.Duration("elapsed", time.Since(started)),
	)

	attempts := make([]Attempt, 0, len(backends))
	for i, backend := range backends {
		if err := ctx.Err(); err != nil {
			return Transcript{}, fmt.Errorf("transcribe: %w", err)
		}
		kind := backend.Kind()
		job := Job{
			Ref:       ref,
			AudioPath: audioPath,
			Language:  opts.Language,
			WorkDir:   filepath.Join(workspace, string(kind)),
			Final:     i == len(backends)-1,
		}
		attemptCtx := services.WithBackend(ctx, string(kind))
		attemptLogger := logging.WithContext(attemptCtx, o.logger)
		attemptLogger.Info("transcription attempt started",
			logging.String(logging.FieldEventType, "backend_attempt"),
			logging.Int("position", i+1),
			logging.Int("backends", len(backends)),
		)

		started := time.Now()
		outcome := backend.Attempt(attemptCtx, job)
		if outcome.Status == StatusSuccess && strings.TrimSpace(outcome.Transcript.Text) == "" {
			outcome = Recoverable(fmt.Errorf("%s returned an empty transcript", kind))
		}
		attempt := Attempt{
			Backend:  kind,
			Profile:  profile,
			Outcome:  outcome.Status,
			Duration: time.Since(started),
		}
		if outcome.Reason != nil {
			attempt.Reason = outcome.Reason.Error()
		}
		attempts = append(attempts, attempt)

		switch outcome.Status {
		case StatusSuccess:
			transcript := outcome.Transcript
			transcript.VideoID = ref.ID
			transcript.Backend = kind
			transcript.Text = strings.TrimSpace(transcript.Text)
			if transcript.Language == "" {
				transcript.Language = langpkg.ToISO2(opts.Language)
			}
			attemptLogger.Info("transcription complete",
				logging.String(logging.FieldEventType, "backend_success"),
				logging.Int("characters", len(transcript.Text)),
				logging.String("language", transcript.Language),
				logging.Duration("elapsed", attempt.Duration),
			)
			return transcript, nil
		case StatusFatal:
			attemptLogger.Error("transcription backend failed",
				logging.String(logging.FieldEventType, "backend_fatal"),
				logging.Error(outcome.Reason),
			)
			return Transcript{}, &BackendError{
				VideoID:  ref.ID,
				Backend:  kind,
				Attempts: attempts,
				Err:      outcome.Reason,
			}
		default:
			logging.WarnWithContext(attemptLogger, "transcription backend failed, trying next", "backend_recoverable",
				logging.Error(outcome.Reason),
				logging.String(logging.FieldErrorHint, "check the backend configuration or availability"),
			)
			if err := ctx.Err(); err != nil {
				return Transcript{}, fmt.Errorf("transcribe: %w", err)
			}
		}
	}
	logger.Error("all transcription backends failed",
		logging.String(logging.FieldEventType, "backends_exhausted"),
		logging.Alert("backends_exhausted"),
		logging.Int("attempts", len(attempts)),
	)
	return Transcript{}, &ExhaustedError{VideoID: ref.ID, Attempts: attempts}
}
