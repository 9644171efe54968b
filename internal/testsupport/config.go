package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"fastscribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Credential environment variables are cleared so the host never leaks keys
// into a test run.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CachePath = filepath.Join(base, "cache", "transcripts.db")
	cfgVal.Local.LockPath = filepath.Join(base, "whisperx.lock")
	cfgVal.Worker.Bind = "127.0.0.1:0"

	for _, name := range []string{"OPENAI_API_KEY", "OPENAI_API_KEYS", "FASTSCRIBE_WORKER_TOKEN", "WHISPER_API_URL", "YTDLP_COOKIES"} {
		t.Setenv(name, "")
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithBackends overrides backends.order on the test config.
func WithBackends(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backends.Order = append([]string(nil), names...)
	}
}

// WithWorkerURL points the remote worker client at url.
func WithWorkerURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Worker.URL = url
	}
}

// WithAPIKeys sets explicit cloud credentials.
func WithAPIKeys(keys ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cloud.APIKeys = append([]string(nil), keys...)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, yt-dlp and ffmpeg are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"yt-dlp", "ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
