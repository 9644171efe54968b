package whisperx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
)

type recordedCall struct {
	name string
	args []string
}

func fakeWhisperX(t *testing.T, output string) (*[]recordedCall, func(ctx context.Context, name string, args ...string) error) {
	t.Helper()
	var calls []recordedCall
	return &calls, func(_ context.Context, name string, args ...string) error {
		calls = append(calls, recordedCall{name: name, args: args})
		switch name {
		case FFmpegCommand:
			return os.WriteFile(args[len(args)-1], []byte("wav"), 0o644)
		case UVXCommand:
			source := args[slices.Index(args, "whisperx")+1]
			outDir := args[slices.Index(args, "--output_dir")+1]
			base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
			return os.WriteFile(filepath.Join(outDir, base+".json"), []byte(output), 0o644)
		}
		return errors.New("unexpected command " + name)
	}
}

func TestTranscribeFilePreparesAndParses(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "dQw4w9WgXcQ.mp3")
	if err := os.WriteFile(source, []byte("mp3"), 0o644); err != nil {
		t.Fatal(err)
	}
	svc := NewService(Config{LockPath: filepath.Join(dir, "locks", "whisperx.lock")}, "")
	calls, runner := fakeWhisperX(t, `{"language":"en","segments":[{"text":" Hello "},{"text":""},{"text":"world."}]}`)
	svc.WithCommandRunner(runner)

	result, err := svc.TranscribeFile(context.Background(), source, filepath.Join(dir, "out"), "")
	if err != nil {
		t.Fatalf("TranscribeFile: %v", err)
	}
	if result.Text != "Hello world." {
		t.Fatalf("text = %q", result.Text)
	}
	if result.Language != "en" {
		t.Fatalf("language = %q", result.Language)
	}
	if len(*calls) != 2 || (*calls)[0].name != FFmpegCommand || (*calls)[1].name != UVXCommand {
		t.Fatalf("unexpected calls %+v", *calls)
	}
	uvx := (*calls)[1].args
	if slices.Contains(uvx, "--language") {
		t.Fatalf("language should be auto-detected: %v", uvx)
	}
	if idx := slices.Index(uvx, "--beam_size"); uvx[idx+1] != BeamSize {
		t.Fatalf("expected default beam size, got %v", uvx)
	}
	if !strings.HasSuffix(result.JSONPath, "dQw4w9WgXcQ.json") {
		t.Fatalf("json path = %q", result.JSONPath)
	}
}

func TestTranscribeFastAndLanguage(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "clip.wav")
	if err := os.WriteFile(source, []byte("wav"), 0o644); err != nil {
		t.Fatal(err)
	}
	svc := NewService(Config{CUDAEnabled: true, Model: "large-v3-turbo"}, "ffmpeg")
	calls, runner := fakeWhisperX(t, `{"segments":[{"text":"hola"}]}`)
	svc.WithCommandRunner(runner)

	result, err := svc.Transcribe(context.Background(), Request{Source: source, Language: "Spanish", Fast: true})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Language != "es" {
		t.Fatalf("language = %q", result.Language)
	}
	if len(*calls) != 1 {
		t.Fatalf("wav input should skip ffmpeg, got %+v", *calls)
	}
	args := (*calls)[0].args
	for flag, want := range map[string]string{
		"--language":  "es",
		"--beam_size": FastBeamSize,
		"--best_of":   FastBestOf,
		"--device":    CUDADevice,
		"--model":     "large-v3-turbo",
	} {
		idx := slices.Index(args, flag)
		if idx < 0 || args[idx+1] != want {
			t.Fatalf("expected %s %s in %v", flag, want, args)
		}
	}
}

func TestTranscribeEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "clip.wav")
	_ = os.WriteFile(source, []byte("wav"), 0o644)
	svc := NewService(Config{}, "")
	_, runner := fakeWhisperX(t, `{"segments":[]}`)
	svc.WithCommandRunner(runner)
	if _, err := svc.TranscribeFile(context.Background(), source, dir, ""); err == nil {
		t.Fatal("expected empty transcript error")
	}
}

func TestTranscribeCommandFailure(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "clip.wav")
	_ = os.WriteFile(source, []byte("wav"), 0o644)
	svc := NewService(Config{}, "")
	svc.WithCommandRunner(func(context.Context, string, ...string) error { return errors.New("boom") })
	_, err := svc.TranscribeFile(context.Background(), source, dir, "")
	if err == nil || !strings.Contains(err.Error(), "whisperx: boom") {
		t.Fatalf("expected wrapped failure, got %v", err)
	}
}

func TestTranscribeWaitsForHostLock(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "whisperx.lock")
	holder := flock.New(lockPath)
	if err := holder.Lock(); err != nil {
		t.Fatalf("hold lock: %v", err)
	}
	defer holder.Unlock()

	source := filepath.Join(dir, "clip.wav")
	_ = os.WriteFile(source, []byte("wav"), 0o644)
	svc := NewService(Config{LockPath: lockPath}, "")
	calls, runner := fakeWhisperX(t, `{"segments":[{"text":"x"}]}`)
	svc.WithCommandRunner(runner)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := svc.TranscribeFile(ctx, source, dir, ""); err == nil {
		t.Fatal("expected lock wait to fail")
	}
	if len(*calls) != 0 {
		t.Fatalf("whisperx must not run without the lock: %+v", *calls)
	}
}

func TestBuildArgsPyannoteToken(t *testing.T) {
	svc := NewService(Config{VADMethod: VADMethodPyannote, HFToken: "hf_x"}, "")
	args := svc.buildArgs("a.wav", "/tmp", "", false)
	idx := slices.Index(args, "--hf_token")
	if idx < 0 || args[idx+1] != "hf_x" {
		t.Fatalf("expected hf token, got %v", args)
	}
	if idx := slices.Index(args, "--compute_type"); idx < 0 || args[idx+1] != CPUComputeType {
		t.Fatalf("expected cpu compute type, got %v", args)
	}
}

func TestNewServiceDefaults(t *testing.T) {
	svc := NewService(Config{Model: "  ", VADMethod: " Silero "}, "")
	if svc.Model() != DefaultModel {
		t.Fatalf("expected default model, got %q", svc.Model())
	}
	args := svc.buildArgs("a.wav", "/tmp", "", false)
	if idx := slices.Index(args, "--vad_method"); idx < 0 || args[idx+1] != VADMethodSilero {
		t.Fatalf("expected normalized vad method, got %v", args)
	}
	if slices.Contains(args, "--hf_token") {
		t.Fatalf("silero must not receive a token: %v", args)
	}
	if prep := buildFFmpegPrepareArgs("in.mp3", "out.wav"); !slices.Contains(prep, prepSampleRate) || prep[len(prep)-1] != "out.wav" {
		t.Fatalf("unexpected ffmpeg args %v", prep)
	}
}
