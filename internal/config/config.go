package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Backend names accepted in backends.order.
const (
	BackendWorker = "worker"
	BackendCloud  = "cloud"
	BackendLocal  = "local"
)

// Paths contains directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	LogDir    string `toml:"log_dir"`
	CachePath string `toml:"cache_path"`
}

// Backends controls which transcription backends run and in what order.
type Backends struct {
	Order []string `toml:"order"`
}

// Download contains yt-dlp settings.
type Download struct {
	Binary    string `toml:"ytdlp_binary"`
	Cookies   string `toml:"cookies"`
	JSRuntime string `toml:"js_runtime"`
}

// Worker contains the remote transcription worker settings. URL is used by
// the client; Bind and MaxUploadMB by `fastscribe worker`.
type Worker struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Bind           string `toml:"bind"`
	MaxUploadMB    int    `toml:"max_upload_mb"`
	// Token is a shared bearer token; empty disables worker authentication.
	Token string `toml:"token"`
}

// Cloud contains the hosted speech-to-text API settings.
type Cloud struct {
	APIKeys           []string `toml:"api_keys"`
	FallbackAPIKeys   []string `toml:"fallback_api_keys"`
	BaseURL           string   `toml:"base_url"`
	Model             string   `toml:"model"`
	RequestsPerMinute int      `toml:"requests_per_minute"`
}

// Local contains the on-host WhisperX engine settings.
type Local struct {
	Enabled      bool   `toml:"enabled"`
	Model        string `toml:"model"`
	CUDAEnabled  bool   `toml:"cuda_enabled"`
	VADMethod    string `toml:"vad_method"`
	HFToken      string `toml:"hf_token"`
	LockPath     string `toml:"lock_path"`
	FFmpegBinary string `toml:"ffmpeg_binary"`
}

// Notes contains the chat-completion settings used to turn transcripts into
// study notes.
type Notes struct {
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Style          string  `toml:"style"`
	Temperature    float64 `toml:"temperature"`
	MaxTokens      int     `toml:"max_tokens"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Cache controls the transcript cache.
type Cache struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for FastScribe.
//
// Configuration sections by subsystem:
//   - Paths: temp workspace root, logs, transcript cache
//   - Backends: transcription fallback order
//   - Download: yt-dlp binary and default cookie source
//   - Worker: remote Whisper worker (client and server side)
//   - Cloud: hosted speech-to-text API and credentials
//   - Local: WhisperX engine
//   - Notes: LLM note generation
//   - Cache: transcript cache toggle
//   - Logging: log format, level, and retention
type Config struct {
	Paths    Paths    `toml:"paths"`
	Backends Backends `toml:"backends"`
	Download Download `toml:"download"`
	Worker   Worker   `toml:"worker"`
	Cloud    Cloud    `toml:"cloud"`
	Local    Local    `toml:"local"`
	Notes    Notes    `toml:"notes"`
	Cache    Cache    `toml:"cache"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A .env file in the working directory or
// next to the config file is loaded first; variables already set win.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	loadDotEnv(".env", filepath.Join(filepath.Dir(resolvedPath), ".env"))

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func loadDotEnv(candidates ...string) {
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		if info, err := os.Stat(abs); err != nil || info.IsDir() {
			continue
		}
		_ = godotenv.Load(abs)
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("fastscribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the CLI writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	if c.Paths.WorkDir != "" {
		dirs = append(dirs, c.Paths.WorkDir)
	}
	if c.Cache.Enabled && c.Paths.CachePath != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.CachePath))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// WorkRoot returns the directory per-run workspaces are created under.
func (c *Config) WorkRoot() string {
	if c.Paths.WorkDir != "" {
		return c.Paths.WorkDir
	}
	return os.TempDir()
}

// BackendEnabled reports whether name appears in backends.order.
func (c *Config) BackendEnabled(name string) bool {
	for _, entry := range c.Backends.Order {
		if entry == name {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
