package ytdlp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"fastscribe/internal/services"
)

const probeJSON = `{"id":"dQw4w9WgXcQ","title":"Demo","availability":"public","live_status":"not_live","formats":[{"format_id":"140","ext":"m4a","acodec":"mp4a.40.2","vcodec":"none"}]}`

type fakeRunner struct {
	calls    [][]string
	probe    string
	probeErr error
	dlErr    error
	writeExt string
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if slices.Contains(args, "-J") {
		if f.probeErr != nil {
			return nil, f.probeErr
		}
		return []byte(f.probe), nil
	}
	if f.dlErr != nil {
		return nil, f.dlErr
	}
	idx := slices.Index(args, "-o")
	if idx < 0 || idx+1 >= len(args) {
		return nil, errors.New("missing -o")
	}
	ext := f.writeExt
	if ext == "" {
		ext = "mp3"
	}
	target := strings.Replace(args[idx+1], "%(ext)s", ext, 1)
	return nil, os.WriteFile(target, []byte("audio"), 0o644)
}

func newTestClient(runner *fakeRunner, jsRuntime string) *Client {
	client := New("yt-dlp", jsRuntime)
	client.WithCommandRunner(runner.run)
	return client
}

func TestDownloadAudioLightweightProfile(t *testing.T) {
	runner := &fakeRunner{probe: probeJSON}
	client := newTestClient(runner, "auto")
	dir := t.TempDir()

	path, err := client.DownloadAudio(context.Background(), AudioRequest{
		VideoURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		VideoID:   "dQw4w9WgXcQ",
		OutputDir: dir,
	})
	if err != nil {
		t.Fatalf("DownloadAudio: %v", err)
	}
	if want := filepath.Join(dir, "dQw4w9WgXcQ.mp3"); path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected probe + download, got %d calls", len(runner.calls))
	}
	download := runner.calls[1]
	for _, want := range []string{"-x", AudioFormat, "--extractor-args", LightweightExtractorArgs, "192K"} {
		if !slices.Contains(download, want) {
			t.Fatalf("download args missing %q: %v", want, download)
		}
	}
	if slices.Contains(download, "--cookies") || slices.Contains(download, "--js-runtimes") {
		t.Fatalf("unexpected cookie or runtime args: %v", download)
	}
}

func TestDownloadAudioCookieFileProfile(t *testing.T) {
	dir := t.TempDir()
	cookies := filepath.Join(dir, "cookies.txt")
	if err := os.WriteFile(cookies, []byte("# Netscape HTTP Cookie File\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	runner := &fakeRunner{probe: probeJSON, writeExt: "m4a"}
	client := newTestClient(runner, "deno")

	path, err := client.DownloadAudio(context.Background(), AudioRequest{
		VideoURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		VideoID:   "dQw4w9WgXcQ",
		OutputDir: filepath.Join(dir, "out"),
		Cookies:   ParseCookieSource(cookies),
	})
	if err != nil {
		t.Fatalf("DownloadAudio: %v", err)
	}
	if filepath.Ext(path) != ".m4a" {
		t.Fatalf("expected fallback to m4a output, got %q", path)
	}
	for _, call := range runner.calls {
		idx := slices.Index(call, "--cookies")
		if idx < 0 || call[idx+1] != cookies {
			t.Fatalf("expected --cookies %s in %v", cookies, call)
		}
		if slices.Contains(call, "--extractor-args") {
			t.Fatalf("cookie profile must not use lightweight args: %v", call)
		}
		if !slices.Contains(call, "--js-runtimes") {
			t.Fatalf("expected js runtime args: %v", call)
		}
	}
}

func TestDownloadAudioMissingCookieFile(t *testing.T) {
	runner := &fakeRunner{probe: probeJSON}
	client := newTestClient(runner, "auto")
	_, err := client.DownloadAudio(context.Background(), AudioRequest{
		VideoURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		OutputDir: t.TempDir(),
		Cookies:   ParseCookieSource(filepath.Join(t.TempDir(), "missing.txt")),
	})
	if !errors.Is(err, services.ErrFatalConfig) {
		t.Fatalf("expected ErrFatalConfig, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("yt-dlp should not run, got %v", runner.calls)
	}
}

func TestDownloadAudioStopsOnClassification(t *testing.T) {
	runner := &fakeRunner{probe: `{"id":"x","availability":"private","formats":[]}`}
	client := newTestClient(runner, "auto")
	_, err := client.DownloadAudio(context.Background(), AudioRequest{
		VideoURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		OutputDir: t.TempDir(),
	})
	if !errors.Is(err, services.ErrPrivateVideo) {
		t.Fatalf("expected ErrPrivateVideo, got %v", err)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("download should not run after rejection, got %d calls", len(runner.calls))
	}
}

func TestDownloadAudioFailureText(t *testing.T) {
	cases := []struct {
		name   string
		stderr string
		marker error
	}{
		{"private", "ERROR: [youtube] abc: Private video. Sign in if you've been granted access", services.ErrPrivateVideo},
		{"bot check", "ERROR: [youtube] abc: Sign in to confirm you're not a bot", services.ErrAuthRequired},
		{"premiere", "ERROR: [youtube] abc: Premieres in 3 hours", services.ErrNotTranscribable},
		{"other", "ERROR: unable to download video data: HTTP Error 403", services.ErrAcquisition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runner := &fakeRunner{probeErr: &CommandError{Err: errors.New("exit status 1"), Stderr: tc.stderr}}
			client := newTestClient(runner, "auto")
			_, err := client.DownloadAudio(context.Background(), AudioRequest{
				VideoURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
				OutputDir: t.TempDir(),
			})
			if !errors.Is(err, tc.marker) {
				t.Fatalf("expected %v, got %v", tc.marker, err)
			}
		})
	}
}

func TestDownloadAudioNoOutputFile(t *testing.T) {
	runner := &fakeRunner{probe: probeJSON}
	client := New("yt-dlp", "auto")
	client.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if slices.Contains(args, "-J") {
			return runner.run(ctx, name, args...)
		}
		return nil, nil
	})
	_, err := client.DownloadAudio(context.Background(), AudioRequest{
		VideoURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		VideoID:   "dQw4w9WgXcQ",
		OutputDir: t.TempDir(),
	})
	if !errors.Is(err, services.ErrAcquisition) {
		t.Fatalf("expected ErrAcquisition, got %v", err)
	}
}

func TestClassifyInfo(t *testing.T) {
	audio := []Format{{FormatID: "140", ACodec: "mp4a.40.2"}}
	videoOnly := []Format{{FormatID: "137", ACodec: "none", VCodec: "avc1"}}
	cases := []struct {
		name   string
		info   Info
		marker error
	}{
		{"ok", Info{Availability: "public", Formats: audio}, nil},
		{"private", Info{Availability: "private", Formats: audio}, services.ErrPrivateVideo},
		{"live", Info{IsLive: true, Formats: audio}, services.ErrNotTranscribable},
		{"upcoming", Info{LiveStatus: "is_upcoming"}, services.ErrNotTranscribable},
		{"members", Info{Availability: "subscriber_only", Formats: videoOnly}, services.ErrAuthRequired},
		{"needs auth", Info{Availability: "needs_auth"}, services.ErrAuthRequired},
		{"silent", Info{Availability: "public", Formats: videoOnly}, services.ErrNoAudio},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ClassifyInfo(tc.info)
			if tc.marker == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.marker) {
				t.Fatalf("expected %v, got %v", tc.marker, err)
			}
		})
	}
}

func TestParseCookieSource(t *testing.T) {
	cases := []struct {
		raw     string
		browser string
		file    string
		profile Profile
	}{
		{"", "", "", ProfileLightweight},
		{"  ", "", "", ProfileLightweight},
		{"firefox", "firefox", "", ProfileCookies},
		{"Chrome+gnomekeyring:Profile 1", "Chrome+gnomekeyring:Profile 1", "", ProfileCookies},
		{"cookies.txt", "", "cookies.txt", ProfileCookies},
		{"/home/me/firefox-cookies.txt", "", "/home/me/firefox-cookies.txt", ProfileCookies},
	}
	for _, tc := range cases {
		got := ParseCookieSource(tc.raw)
		if got.Browser() != tc.browser || got.File() != tc.file {
			t.Fatalf("ParseCookieSource(%q) = %s, want browser %q file %q", tc.raw, got, tc.browser, tc.file)
		}
		if got.Profile() != tc.profile {
			t.Fatalf("ParseCookieSource(%q).Profile() = %v, want %v", tc.raw, got.Profile(), tc.profile)
		}
	}
}

func TestCookieSourceEmitsOneProfile(t *testing.T) {
	cases := []struct {
		raw  string
		flag string
	}{
		{"", "--extractor-args"},
		{"firefox", "--cookies-from-browser"},
	}
	for _, tc := range cases {
		args, err := ParseCookieSource(tc.raw).profileArgs()
		if err != nil {
			t.Fatalf("profileArgs(%q): %v", tc.raw, err)
		}
		if len(args) != 2 || args[0] != tc.flag {
			t.Fatalf("profileArgs(%q) = %v, want a single %s pair", tc.raw, args, tc.flag)
		}
	}

	file := filepath.Join(t.TempDir(), "cookies.txt")
	if err := os.WriteFile(file, []byte("# Netscape HTTP Cookie File\n"), 0o600); err != nil {
		t.Fatalf("write cookies: %v", err)
	}
	args, err := ParseCookieSource(file).profileArgs()
	if err != nil {
		t.Fatalf("profileArgs(file): %v", err)
	}
	if len(args) != 2 || args[0] != "--cookies" || args[1] != file {
		t.Fatalf("unexpected file args %v", args)
	}
}

func TestInvalidJSRuntime(t *testing.T) {
	runner := &fakeRunner{probe: probeJSON}
	client := newTestClient(runner, "rhino")
	_, err := client.Probe(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", CookieSource{})
	if !errors.Is(err, services.ErrFatalConfig) {
		t.Fatalf("expected ErrFatalConfig, got %v", err)
	}
}

func TestLimitedBuffer(t *testing.T) {
	buf := &limitedBuffer{max: 4}
	n, err := buf.Write([]byte("abcdef"))
	if err != nil || n != 6 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if buf.String() != "abcd" {
		t.Fatalf("buffer = %q", buf.String())
	}
}
