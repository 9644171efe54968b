package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"fastscribe/internal/config"
	"fastscribe/internal/credentials"
	"fastscribe/internal/deps"
	"fastscribe/internal/services/remoteworker"
)

// HealthChecker is satisfied by clients exposing a health endpoint.
type HealthChecker interface {
	Configured() bool
	URL() string
	Health(ctx context.Context) error
}

// CheckWorker verifies the remote worker answers /health within five seconds.
func CheckWorker(ctx context.Context, client HealthChecker) Result {
	const name = "Remote worker"

	if client == nil || !client.Configured() {
		return Result{Name: name, Detail: "url not configured"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Health(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeHealthError(client.URL(), err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", client.URL())}
}

// CheckCredentials reports how many cloud credentials are available and where
// they came from. Keys are not validated against the API.
func CheckCredentials(explicit, fallback []string) Result {
	const name = "Cloud credentials"

	pool, err := credentials.FromSources(credentials.SourcesFromEnv(explicit, fallback))
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("none configured (set %s or %s)", credentials.EnvSingleKey, credentials.EnvMultiKey)}
	}
	noun := "keys"
	if pool.Size() == 1 {
		noun = "key"
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d %s from %s", pool.Size(), noun, pool.Source())}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "path not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has at least minBytes
// available to unprivileged users.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := uint64(stat.Bavail) * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s free on %s", formatBytes(free), path)
	if free < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (need %s)", detail, formatBytes(minBytes))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckSystemDeps evaluates the external binaries required by the configured
// backends.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Download.Binary,
			Description: "Required for audio download",
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.Local.FFmpegBinary,
			Description: "Required for audio extraction",
		},
	}
	if cfg.Local.Enabled && cfg.BackendEnabled(config.BackendLocal) {
		requirements = append(requirements, deps.Requirement{
			Name:        "uvx",
			Command:     "uvx",
			Description: "Required for WhisperX-driven local transcription",
		})
	}
	statuses := deps.CheckBinaries(requirements)
	return append(statuses, deps.CheckJSRuntime(cfg.Download.JSRuntime))
}

func summarizeHealthError(url string, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("%s (health check timed out)", url)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("%s (health check timed out)", url)
	}
	if code := remoteworker.StatusCode(err); code != 0 {
		return fmt.Sprintf("%s (http %d)", url, code)
	}
	return fmt.Sprintf("%s (%v)", url, err)
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
