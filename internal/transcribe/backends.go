package transcribe

import (
	"context"
	"errors"

	"fastscribe/internal/services/cloudstt"
	"fastscribe/internal/services/remoteworker"
	"fastscribe/internal/services/whisperx"
)

// WorkerClient is the subset of remoteworker.Client used here.
type WorkerClient interface {
	Configured() bool
	Transcribe(ctx context.Context, audioPath, language string) (remoteworker.Result, error)
}

// CloudClient is the subset of cloudstt.Client used here.
type CloudClient interface {
	Transcribe(ctx context.Context, credential, audioPath, language string) (cloudstt.Result, error)
}

// Credentials hands out API keys in rotation.
type Credentials interface {
	Next() string
	Size() int
}

// LocalEngine is the subset of whisperx.Service used here.
type LocalEngine interface {
	TranscribeFile(ctx context.Context, source, outputDir, language string) (whisperx.TranscribeResult, error)
}

// WorkerBackend posts audio to a remote worker. Every failure is recoverable.
type WorkerBackend struct {
	client WorkerClient
}

// NewWorkerBackend wraps client. A nil or unconfigured client is unavailable.
func NewWorkerBackend(client WorkerClient) *WorkerBackend {
	return &WorkerBackend{client: client}
}

func (b *WorkerBackend) Kind() Kind { return KindWorker }

func (b *WorkerBackend) Available() bool {
	return b.client != nil && b.client.Configured()
}

func (b *WorkerBackend) Attempt(ctx context.Context, job Job) Outcome {
	result, err := b.client.Transcribe(ctx, job.AudioPath, job.Language)
	if err != nil {
		return Recoverable(err)
	}
	return Success(Transcript{Text: result.Text, Language: result.Language})
}

// CloudBackend calls the hosted speech-to-text API with a rotated credential.
// Failures are recoverable unless this is the run's final backend.
type CloudBackend struct {
	client CloudClient
	keys   Credentials
}

// NewCloudBackend wraps client and keys.
func NewCloudBackend(client CloudClient, keys Credentials) *CloudBackend {
	return &CloudBackend{client: client, keys: keys}
}

func (b *CloudBackend) Kind() Kind { return KindCloud }

func (b *CloudBackend) Available() bool {
	return b.client != nil && b.keys != nil && b.keys.Size() > 0
}

func (b *CloudBackend) Attempt(ctx context.Context, job Job) Outcome {
	result, err := b.client.Transcribe(ctx, b.keys.Next(), job.AudioPath, job.Language)
	if err != nil {
		if job.Final {
			return Fatal(err)
		}
		return Recoverable(err)
	}
	return Success(Transcript{Text: result.Text, Language: result.Language})
}

// LocalBackend runs WhisperX on this host. Any failure is fatal.
type LocalBackend struct {
	engine LocalEngine
}

// NewLocalBackend wraps engine.
func NewLocalBackend(engine LocalEngine) *LocalBackend {
	return &LocalBackend{engine: engine}
}

func (b *LocalBackend) Kind() Kind { return KindLocal }

func (b *LocalBackend) Available() bool {
	return b.engine != nil
}

func (b *LocalBackend) Attempt(ctx context.Context, job Job) Outcome {
	result, err := b.engine.TranscribeFile(ctx, job.AudioPath, job.WorkDir, job.Language)
	if err != nil {
		return Fatal(err)
	}
	if result.Text == "" {
		return Fatal(errors.New("local engine produced no text"))
	}
	return Success(Transcript{Text: result.Text, Language: result.Language})
}
