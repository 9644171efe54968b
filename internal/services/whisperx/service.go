package whisperx

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	langpkg "fastscribe/internal/language"
)

const lockRetryDelay = 500 * time.Millisecond

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg           Config
	ffmpegBinary  string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config, ffmpegBinary string) *Service {
	if ffmpegBinary == "" {
		ffmpegBinary = FFmpegCommand
	}
	return &Service{
		cfg:          cfg.withDefaults(),
		ffmpegBinary: ffmpegBinary,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.Model
}

// CUDAEnabled returns whether CUDA is enabled.
func (s *Service) CUDAEnabled() bool {
	return s.cfg.CUDAEnabled
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, tail(strings.TrimSpace(string(output)), 4096))
	}
	return nil
}

// Request describes one transcription.
type Request struct {
	// Source is any audio file ffmpeg can read.
	Source string
	// OutputDir receives the prepared WAV and WhisperX output files.
	OutputDir string
	// Language is an optional hint; empty lets WhisperX detect it.
	Language string
	// Fast switches to greedy decoding (beam size and best-of 1).
	Fast bool
}

// TranscribeResult contains the result of a transcription.
type TranscribeResult struct {
	// Text is the plain text transcription.
	Text string
	// Language is the ISO 639-1 code WhisperX detected or was given.
	Language string
	// SRTPath is the path to the generated SRT file (if available).
	SRTPath string
	// JSONPath is the path to the generated JSON file.
	JSONPath string
}

// TranscribeFile transcribes source with the default decoding settings.
// outputDir is where WhisperX will write its output files.
func (s *Service) TranscribeFile(ctx context.Context, source, outputDir, language string) (TranscribeResult, error) {
	return s.Transcribe(ctx, Request{Source: source, OutputDir: outputDir, Language: language})
}

// Transcribe prepares req.Source, runs WhisperX while holding the host lock,
// and loads the transcript from the JSON output.
func (s *Service) Transcribe(ctx context.Context, req Request) (TranscribeResult, error) {
	var result TranscribeResult

	if req.Source == "" {
		return result, fmt.Errorf("transcribe: source path required")
	}
	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(req.Source)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return result, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(req.Source), filepath.Ext(req.Source))
	wavPath := req.Source
	if !strings.EqualFold(filepath.Ext(req.Source), ".wav") {
		wavPath = filepath.Join(outputDir, baseName+".wav")
		if err := s.PrepareAudio(ctx, req.Source, wavPath); err != nil {
			return result, fmt.Errorf("transcribe: %w", err)
		}
	}

	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return result, err
	}
	args := s.buildArgs(wavPath, outputDir, req.Language, req.Fast)
	runErr := s.run(ctx, UVXCommand, args...)
	unlock()
	if runErr != nil {
		return result, fmt.Errorf("whisperx: %w", runErr)
	}

	wavBase := strings.TrimSuffix(filepath.Base(wavPath), filepath.Ext(wavPath))
	result.SRTPath = filepath.Join(outputDir, wavBase+".srt")
	result.JSONPath = filepath.Join(outputDir, wavBase+".json")

	payload, err := loadPayload(result.JSONPath)
	if err != nil {
		return result, fmt.Errorf("whisperx: load output: %w", err)
	}
	result.Text = payload.text()
	if result.Text == "" {
		return result, fmt.Errorf("whisperx: empty transcript in %s", result.JSONPath)
	}
	result.Language = langpkg.ToISO2(payload.Language)
	if result.Language == "" {
		result.Language = langpkg.ToISO2(req.Language)
	}
	return result, nil
}

// acquireLock blocks until the host-wide inference lock is held or ctx ends.
func (s *Service) acquireLock(ctx context.Context) (func(), error) {
	if s.cfg.LockPath == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(s.cfg.LockPath), 0o755); err != nil {
		return nil, fmt.Errorf("whisperx lock: ensure dir: %w", err)
	}
	lock := flock.New(s.cfg.LockPath)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("whisperx lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("whisperx lock: %s not acquired", s.cfg.LockPath)
	}
	return func() { _ = lock.Unlock() }, nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir, language string, fast bool) []string {
	args := make([]string, 0, 40)

	if s.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	dec := decodingFor(fast)

	args = append(args,
		"whisperx",
		source,
		"--model", s.Model(),
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--segment_resolution", SegmentResolution,
		"--chunk_size", ChunkSize,
		"--vad_onset", VADOnset,
		"--vad_offset", VADOffset,
		"--beam_size", dec.beamSize,
		"--best_of", dec.bestOf,
		"--temperature", Temperature,
		"--patience", Patience,
	)

	args = append(args, "--vad_method", s.cfg.VADMethod)
	if s.cfg.VADMethod == VADMethodPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}

	if lang := langpkg.ToISO2(language); lang != "" {
		args = append(args, "--language", lang)
	}

	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}

	return args
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type payload struct {
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

func (p payload) text() string {
	parts := make([]string, 0, len(p.Segments))
	for _, seg := range p.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func loadPayload(jsonPath string) (payload, error) {
	var out payload
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("parse whisperx json: %w", err)
	}
	return out, nil
}

// LoadSegments loads segments from a WhisperX JSON file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	p, err := loadPayload(jsonPath)
	if err != nil {
		return nil, err
	}
	return p.Segments, nil
}

func tail(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return "..." + s[len(s)-limit:]
}
