package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"fastscribe/internal/services"
)

// Download defaults.
const (
	DefaultBinary = "yt-dlp"
	AudioFormat   = "bestaudio[ext=m4a]/bestaudio[ext=webm]/bestaudio/best"
	AudioCodec    = "mp3"
	AudioQuality  = "192K"
	maxStderrKeep = 8192
)

// CommandRunner executes name with args and returns stdout. Errors should
// carry enough of stderr for classification.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Client runs yt-dlp.
type Client struct {
	binary    string
	jsRuntime string
	run       CommandRunner
}

// New builds a client for the given binary and JavaScript runtime ("auto",
// "deno", "node", "quickjs", or "bun").
func New(binary, jsRuntime string) *Client {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	return &Client{
		binary:    binary,
		jsRuntime: jsRuntime,
		run:       runCommand,
	}
}

// WithCommandRunner replaces the process runner (for testing).
func (c *Client) WithCommandRunner(runner CommandRunner) {
	if runner != nil {
		c.run = runner
	}
}

// Binary returns the configured yt-dlp executable.
func (c *Client) Binary() string {
	return c.binary
}

// AudioRequest describes one audio download.
type AudioRequest struct {
	VideoURL  string
	VideoID   string
	OutputDir string
	Cookies   CookieSource
}

// Format is the subset of a yt-dlp format entry used for classification.
type Format struct {
	FormatID string `json:"format_id"`
	Ext      string `json:"ext"`
	ACodec   string `json:"acodec"`
	VCodec   string `json:"vcodec"`
}

// Info is the subset of yt-dlp's -J output used for classification.
type Info struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Duration     float64  `json:"duration"`
	Availability string   `json:"availability"`
	LiveStatus   string   `json:"live_status"`
	IsLive       bool     `json:"is_live"`
	Formats      []Format `json:"formats"`
}

// AudioFormats returns formats that carry an audio codec.
func (i Info) AudioFormats() []Format {
	out := make([]Format, 0, len(i.Formats))
	for _, f := range i.Formats {
		if f.ACodec != "none" {
			out = append(out, f)
		}
	}
	return out
}

// Probe fetches video metadata without downloading media.
func (c *Client) Probe(ctx context.Context, videoURL string, cookies CookieSource) (Info, error) {
	if strings.TrimSpace(videoURL) == "" {
		return Info{}, services.Wrap(services.ErrInvalidReference, "download", "probe", "video URL is required", nil)
	}
	args := []string{"-J", "--no-playlist", "--skip-download", "--no-warnings"}
	args, err := c.commonArgs(args, cookies)
	if err != nil {
		return Info{}, err
	}
	args = append(args, videoURL)

	output, err := c.run(ctx, c.binary, args...)
	if err != nil {
		return Info{}, classifyFailure("probe", err)
	}
	if len(bytes.TrimSpace(output)) == 0 {
		return Info{}, services.Wrap(services.ErrAcquisition, "download", "probe", "yt-dlp returned empty output", nil)
	}
	var info Info
	if err := json.Unmarshal(output, &info); err != nil {
		return Info{}, services.Wrap(services.ErrAcquisition, "download", "probe", "parse metadata", err)
	}
	return info, nil
}

// DownloadAudio probes the video, rejects ones that cannot be transcribed and
// extracts the audio track as mp3 into req.OutputDir. It returns the path of
// the audio file.
func (c *Client) DownloadAudio(ctx context.Context, req AudioRequest) (string, error) {
	if strings.TrimSpace(req.VideoURL) == "" {
		return "", services.Wrap(services.ErrInvalidReference, "download", "audio", "video URL is required", nil)
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return "", services.Wrap(services.ErrFatalConfig, "download", "audio", "output directory is required", nil)
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrFatalConfig, "download", "audio", "create output directory", err)
	}

	info, err := c.Probe(ctx, req.VideoURL, req.Cookies)
	if err != nil {
		return "", err
	}
	if err := ClassifyInfo(info); err != nil {
		return "", err
	}

	base := strings.TrimSpace(req.VideoID)
	if base == "" {
		base = strings.TrimSpace(info.ID)
	}
	if base == "" {
		base = "audio"
	}

	args := []string{
		"--no-playlist",
		"--no-progress",
		"--no-warnings",
		"-f", AudioFormat,
		"-x",
		"--audio-format", AudioCodec,
		"--audio-quality", AudioQuality,
		"-o", filepath.Join(req.OutputDir, base+".%(ext)s"),
	}
	args, err = c.commonArgs(args, req.Cookies)
	if err != nil {
		return "", err
	}
	args = append(args, req.VideoURL)

	if _, err := c.run(ctx, c.binary, args...); err != nil {
		return "", classifyFailure("audio", err)
	}
	return locateAudio(req.OutputDir, base)
}

func (c *Client) commonArgs(args []string, cookies CookieSource) ([]string, error) {
	profile, err := cookies.profileArgs()
	if err != nil {
		return nil, err
	}
	args = append(args, profile...)
	args, err = appendJSRuntimeArgs(args, c.jsRuntime)
	if err != nil {
		return nil, services.Wrap(services.ErrFatalConfig, "download", "js runtime", "", err)
	}
	return args, nil
}

func locateAudio(dir, base string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, base+".*"))
	if err != nil {
		return "", services.Wrap(services.ErrAcquisition, "download", "locate audio", "", err)
	}
	candidates := matches[:0]
	for _, match := range matches {
		ext := strings.ToLower(filepath.Ext(match))
		if ext == ".part" || ext == ".ytdl" {
			continue
		}
		candidates = append(candidates, match)
	}
	if len(candidates) == 0 {
		return "", services.Wrap(services.ErrAcquisition, "download", "locate audio", "yt-dlp produced no audio file", nil)
	}
	sort.Strings(candidates)
	for _, candidate := range candidates {
		if strings.EqualFold(filepath.Ext(candidate), "."+AudioCodec) {
			return candidate, nil
		}
	}
	return candidates[0], nil
}

func appendJSRuntimeArgs(args []string, rawRuntime string) ([]string, error) {
	runtime, ok := normalizeJSRuntime(rawRuntime)
	if !ok {
		return nil, fmt.Errorf("invalid js runtime %q (expected auto, deno, node, quickjs, or bun)", strings.TrimSpace(rawRuntime))
	}
	if runtime == "auto" {
		return args, nil
	}
	return append(args, "--no-js-runtimes", "--js-runtimes", runtime), nil
}

func normalizeJSRuntime(raw string) (string, bool) {
	switch value := strings.ToLower(strings.TrimSpace(raw)); value {
	case "", "auto":
		return "auto", true
	case "deno", "node", "quickjs", "bun":
		return value, true
	default:
		return "", false
	}
}

// CommandError is returned by the default runner when yt-dlp exits non-zero.
type CommandError struct {
	Err    error
	Stderr string
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("yt-dlp failed: %v", e.Err)
	}
	return fmt.Sprintf("yt-dlp failed: %v\n%s", e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stdout bytes.Buffer
	stderr := &limitedBuffer{max: maxStderrKeep}
	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return stdout.Bytes(), &CommandError{Err: err, Stderr: strings.TrimSpace(stderr.String())}
	}
	return stdout.Bytes(), nil
}

type limitedBuffer struct {
	buf bytes.Buffer
	max int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if remain := b.max - b.buf.Len(); remain > 0 {
		if len(p) > remain {
			b.buf.Write(p[:remain])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}
