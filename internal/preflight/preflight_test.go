package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fastscribe/internal/config"
	"fastscribe/internal/services/remoteworker"
	"fastscribe/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryAccess_Empty(t *testing.T) {
	result := CheckDirectoryAccess("test", " ")
	if result.Passed || result.Detail != "path not configured" {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFreeSpace("space", dir, 1); !result.Passed {
		t.Fatalf("expected pass with 1 byte minimum, got: %s", result.Detail)
	}
	result := CheckFreeSpace("space", dir, 1<<62)
	if result.Passed {
		t.Fatal("expected failure for absurd minimum")
	}
	if !strings.Contains(result.Detail, "need") {
		t.Fatalf("expected shortfall detail, got %q", result.Detail)
	}
	if result := CheckFreeSpace("space", filepath.Join(dir, "missing"), 1); result.Passed {
		t.Fatal("expected failure for missing path")
	}
}

func TestCheckWorker_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckWorker(context.Background(), remoteworker.New(srv.URL, 0))
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckWorker_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := CheckWorker(context.Background(), remoteworker.New(srv.URL, 0))
	if result.Passed {
		t.Fatal("expected failure for 401")
	}
	if !strings.Contains(result.Detail, "http 401") {
		t.Fatalf("expected status in detail, got %q", result.Detail)
	}
}

func TestCheckWorker_NotConfigured(t *testing.T) {
	result := CheckWorker(context.Background(), remoteworker.New("", 0))
	if result.Passed || result.Detail != "url not configured" {
		t.Fatalf("unexpected result %#v", result)
	}
	if result := CheckWorker(context.Background(), nil); result.Passed {
		t.Fatal("expected failure for nil client")
	}
}

func TestCheckCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEYS", "")
	t.Setenv("OPENAI_API_KEY", "")

	if result := CheckCredentials(nil, nil); result.Passed {
		t.Fatal("expected failure without credentials")
	}

	result := CheckCredentials([]string{"a", "b"}, nil)
	if !result.Passed || result.Detail != "2 keys from explicit" {
		t.Fatalf("unexpected result %#v", result)
	}

	t.Setenv("OPENAI_API_KEY", "solo")
	result = CheckCredentials(nil, []string{"fallback"})
	if !result.Passed || result.Detail != "1 key from single" {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("yt-dlp", "ffmpeg"))
	cfg.Download.JSRuntime = "auto"

	statuses := CheckSystemDeps(cfg)
	names := make([]string, 0, len(statuses))
	for _, status := range statuses {
		names = append(names, status.Name)
	}
	if got := strings.Join(names, ","); got != "yt-dlp,FFmpeg,JS runtime" {
		t.Fatalf("unexpected requirement list %q", got)
	}
	if !statuses[0].Available || !statuses[1].Available {
		t.Fatalf("expected stubbed binaries to resolve: %#v", statuses[:2])
	}

	cfg.Local.Enabled = true
	statuses = CheckSystemDeps(cfg)
	if len(statuses) != 4 || statuses[2].Name != "uvx" {
		t.Fatalf("expected uvx when local engine enabled, got %#v", statuses)
	}

	cfg.Backends.Order = []string{config.BackendWorker}
	if statuses = CheckSystemDeps(cfg); len(statuses) != 3 {
		t.Fatalf("expected uvx skipped when local backend not ordered, got %d", len(statuses))
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_LocalOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBackends(config.BackendLocal))

	results := RunAll(context.Background(), cfg)
	want := []string{"Work directory", "Work directory space", "Log directory", "Cache directory"}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %#v", len(want), results)
	}
	for i, r := range results {
		if r.Name != want[i] {
			t.Errorf("result %d: expected %q, got %q", i, want[i], r.Name)
		}
		if r.Name != "Work directory space" && !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestRunAll_IncludesWorkerAndCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t,
		testsupport.WithBackends(config.BackendWorker, config.BackendCloud),
		testsupport.WithWorkerURL(srv.URL),
		testsupport.WithAPIKeys("sk-one"),
	)
	cfg.Worker.Token = "secret"
	cfg.Cache.Enabled = false

	results := RunAll(context.Background(), cfg)
	byName := make(map[string]Result, len(results))
	for _, r := range results {
		byName[r.Name] = r
	}
	if _, ok := byName["Cache directory"]; ok {
		t.Fatal("expected cache check skipped when cache disabled")
	}
	if r, ok := byName["Remote worker"]; !ok || !r.Passed {
		t.Fatalf("expected passing worker check, got %#v", r)
	}
	if r, ok := byName["Cloud credentials"]; !ok || !r.Passed {
		t.Fatalf("expected passing credential check, got %#v", r)
	}
}
