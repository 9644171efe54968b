package preflight

import (
	"context"
	"path/filepath"
	"time"

	"fastscribe/internal/config"
	"fastscribe/internal/services/remoteworker"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// minWorkSpaceBytes is the free space a single run needs for the downloaded
// audio plus the 16 kHz WAV the local engine prepares.
const minWorkSpaceBytes = 512 << 20

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	workRoot := cfg.WorkRoot()
	results = append(results, CheckDirectoryAccess("Work directory", workRoot))
	results = append(results, CheckFreeSpace("Work directory space", workRoot, minWorkSpaceBytes))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	if cfg.Cache.Enabled && cfg.Paths.CachePath != "" {
		results = append(results, CheckDirectoryAccess("Cache directory", filepath.Dir(cfg.Paths.CachePath)))
	}

	if cfg.BackendEnabled(config.BackendWorker) {
		client := remoteworker.New(cfg.Worker.URL, time.Duration(cfg.Worker.TimeoutSeconds)*time.Second).
			WithToken(cfg.Worker.Token)
		results = append(results, CheckWorker(ctx, client))
	}

	if cfg.BackendEnabled(config.BackendCloud) {
		results = append(results, CheckCredentials(cfg.Cloud.APIKeys, cfg.Cloud.FallbackAPIKeys))
	}

	return results
}
