package cloudstt

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp3")
	if err := os.WriteFile(path, []byte("fake-mp3"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscribeVerboseJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected authorization %q", auth)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q", got)
		}
		if got := r.FormValue("response_format"); got != ResponseFormat {
			t.Errorf("response_format = %q", got)
		}
		if got := r.FormValue("language"); got != "es" {
			t.Errorf("language = %q", got)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			data, _ := io.ReadAll(file)
			_ = file.Close()
			if string(data) != "fake-mp3" {
				t.Errorf("unexpected upload %q", data)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"task":     "transcribe",
			"language": "spanish",
			"duration": 12.5,
			"text":     " hola mundo ",
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL + "/v1"})
	result, err := client.Transcribe(context.Background(), "sk-test", writeAudio(t), "Spanish")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Text != "hola mundo" {
		t.Fatalf("text = %q", result.Text)
	}
	if result.Language != "es" {
		t.Fatalf("language = %q", result.Language)
	}
	if result.Duration != 12500*time.Millisecond {
		t.Fatalf("duration = %v", result.Duration)
	}
}

func TestTranscribeOmitsUnknownLanguage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		if _, ok := r.MultipartForm.Value["language"]; ok {
			t.Errorf("language should be omitted")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"text": "hello", "language": "english"})
	}))
	defer server.Close()

	result, err := NewClient(Config{BaseURL: server.URL}).Transcribe(context.Background(), "sk", writeAudio(t), "")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Language != "en" {
		t.Fatalf("language = %q", result.Language)
	}
}

func TestTranscribeHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	_, err := NewClient(Config{BaseURL: server.URL}).Transcribe(context.Background(), "sk", writeAudio(t), "")
	if StatusCode(err) != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
}

func TestTranscribeRequiresCredential(t *testing.T) {
	if _, err := NewClient(Config{}).Transcribe(context.Background(), " ", "clip.mp3", ""); err == nil {
		t.Fatal("expected error for empty credential")
	}
}

func TestTranscribeLimiterHonoursContext(t *testing.T) {
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	limiter.Allow()
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, WithLimiter(limiter))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := client.Transcribe(ctx, "sk", writeAudio(t), ""); err == nil {
		t.Fatal("expected limiter wait to fail")
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{RequestsPerMinute: 30})
	if client.Model() != DefaultModel || client.cfg.BaseURL != DefaultBaseURL {
		t.Fatalf("unexpected defaults %+v", client.cfg)
	}
	if client.limiter == nil {
		t.Fatal("expected limiter when requests_per_minute is set")
	}
}
