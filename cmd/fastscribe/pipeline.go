package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fastscribe/internal/config"
	"fastscribe/internal/credentials"
	"fastscribe/internal/logging"
	"fastscribe/internal/services"
	"fastscribe/internal/services/cloudstt"
	"fastscribe/internal/services/notes"
	"fastscribe/internal/services/remoteworker"
	"fastscribe/internal/services/whisperx"
	"fastscribe/internal/transcribe"
	"fastscribe/internal/transcriptcache"
	"fastscribe/internal/videoref"
	"fastscribe/internal/ytdlp"
)

// transcribeRequest carries the per-invocation transcribe flags.
type transcribeRequest struct {
	language string
	cookies  string
	local    bool
	noCache  bool
}

// credentialPool builds a pool from config and environment. Commands obtain
// theirs through commandContext.ensureCredentials so one process rotates a
// single pool.
func credentialPool(cfg *config.Config) (*credentials.Pool, error) {
	return credentials.FromSources(credentials.SourcesFromEnv(cfg.Cloud.APIKeys, cfg.Cloud.FallbackAPIKeys))
}

func newLocalEngine(cfg *config.Config) *whisperx.Service {
	return whisperx.NewService(whisperx.Config{
		Model:       cfg.Local.Model,
		CUDAEnabled: cfg.Local.CUDAEnabled,
		VADMethod:   cfg.Local.VADMethod,
		HFToken:     cfg.Local.HFToken,
		LockPath:    cfg.Local.LockPath,
	}, cfg.Local.FFmpegBinary)
}

// buildBackends returns the backends named by backends.order. A nil pool is
// passed on as a nil interface, never a typed nil.
func buildBackends(cfg *config.Config, pool *credentials.Pool) []transcribe.Backend {
	backends := make([]transcribe.Backend, 0, len(cfg.Backends.Order))
	for _, name := range cfg.Backends.Order {
		switch name {
		case config.BackendWorker:
			client := remoteworker.New(cfg.Worker.URL, time.Duration(cfg.Worker.TimeoutSeconds)*time.Second).
				WithToken(cfg.Worker.Token)
			backends = append(backends, transcribe.NewWorkerBackend(client))
		case config.BackendCloud:
			client := cloudstt.NewClient(cloudstt.Config{
				BaseURL:           cfg.Cloud.BaseURL,
				Model:             cfg.Cloud.Model,
				RequestsPerMinute: cfg.Cloud.RequestsPerMinute,
			})
			var keys transcribe.Credentials
			if pool != nil {
				keys = pool
			}
			backends = append(backends, transcribe.NewCloudBackend(client, keys))
		case config.BackendLocal:
			backends = append(backends, transcribe.NewLocalBackend(newLocalEngine(cfg)))
		}
	}
	return backends
}

func newOrchestrator(cfg *config.Config, pool *credentials.Pool, logger *slog.Logger) *transcribe.Orchestrator {
	downloader := ytdlp.New(cfg.Download.Binary, cfg.Download.JSRuntime)
	return transcribe.New(downloader, buildBackends(cfg, pool),
		transcribe.WithWorkRoot(cfg.WorkRoot()),
		transcribe.WithLogger(logger),
	)
}

func (r transcribeRequest) options(cfg *config.Config) transcribe.Options {
	cookies := strings.TrimSpace(r.cookies)
	if cookies == "" {
		cookies = cfg.Download.Cookies
	}
	return transcribe.Options{
		Language: strings.TrimSpace(r.language),
		Cookies:  ytdlp.ParseCookieSource(cookies),
		Local:    r.local || cfg.Local.Enabled,
	}
}

// obtainTranscript serves the transcript from the cache when possible and
// otherwise runs the fallback pipeline, storing successful results.
func obtainTranscript(ctx context.Context, cfg *config.Config, pool *credentials.Pool, logger *slog.Logger, ref videoref.Reference, req transcribeRequest) (transcribe.Transcript, bool, error) {
	ctx = services.WithVideoID(ctx, ref.ID)
	log := logging.WithContext(ctx, logging.NewComponentLogger(logger, "cli"))

	var store *transcriptcache.Store
	if cfg.Cache.Enabled && cfg.Paths.CachePath != "" {
		opened, err := transcriptcache.Open(cfg.Paths.CachePath)
		if err != nil {
			logging.WarnWithContext(log, "transcript cache unavailable", "cache_open_failed",
				logging.String(logging.FieldErrorHint, "check paths.cache_path permissions or disable [cache]"),
				logging.Error(err),
			)
		} else {
			store = opened
			defer store.Close()
		}
	}

	hint := strings.TrimSpace(req.language)
	if store != nil && !req.noCache {
		entry, ok, err := store.Get(ctx, ref.ID, hint)
		if err != nil {
			log.Warn("transcript cache lookup failed", logging.Error(err))
		} else if ok {
			log.Info("transcript served from cache",
				logging.String(logging.FieldEventType, "cache_hit"),
				logging.String(logging.FieldBackend, entry.Backend),
			)
			return transcribe.Transcript{
				VideoID:  entry.VideoID,
				Text:     entry.Text,
				Language: entry.Language,
				Backend:  transcribe.Kind(entry.Backend),
			}, true, nil
		}
	}

	orchestrator := newOrchestrator(cfg, pool, logger)
	transcript, err := orchestrator.GetTranscript(ctx, ref, req.options(cfg))
	if err != nil {
		return transcribe.Transcript{}, false, err
	}

	if store != nil {
		putErr := store.Put(ctx, transcriptcache.Entry{
			VideoID:  transcript.VideoID,
			Hint:     hint,
			Language: transcript.Language,
			Backend:  string(transcript.Backend),
			Text:     transcript.Text,
		})
		if putErr != nil {
			log.Warn("transcript cache store failed", logging.Error(putErr))
		}
	}
	return transcript, false, nil
}

func newNotesClient(cfg *config.Config) *notes.Client {
	return notes.NewClient(notes.Config{
		BaseURL:        cfg.Notes.BaseURL,
		Model:          cfg.Notes.Model,
		Temperature:    cfg.Notes.Temperature,
		MaxTokens:      cfg.Notes.MaxTokens,
		TimeoutSeconds: cfg.Notes.TimeoutSeconds,
	})
}

// generateNotes turns transcript text into notes of the given style using the
// next credential from pool.
func generateNotes(ctx context.Context, cfg *config.Config, pool *credentials.Pool, transcript, style string) (string, error) {
	if pool == nil {
		return "", services.Wrap(services.ErrFatalConfig, "notes", "credentials", "no API credentials configured", nil)
	}
	out, err := newNotesClient(cfg).CreateNotes(ctx, pool.Next(), transcript, style)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", fmt.Errorf("generate notes: %w", err)
	}
	return out, nil
}
