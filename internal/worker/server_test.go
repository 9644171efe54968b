package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fastscribe/internal/services/remoteworker"
	"fastscribe/internal/services/whisperx"
	"fastscribe/internal/testsupport"
)

type stubEngine struct {
	requests []whisperx.Request
	payloads []string
	err      error
}

func (s *stubEngine) Model() string { return "large-v3" }

func (s *stubEngine) Transcribe(_ context.Context, req whisperx.Request) (whisperx.TranscribeResult, error) {
	s.requests = append(s.requests, req)
	data, err := os.ReadFile(req.Source)
	if err != nil {
		return whisperx.TranscribeResult{}, err
	}
	s.payloads = append(s.payloads, string(data))
	if s.err != nil {
		return whisperx.TranscribeResult{}, s.err
	}
	lang := req.Language
	if lang == "" {
		lang = "en"
	}
	return whisperx.TranscribeResult{Text: "transcribed " + string(data), Language: lang}, nil
}

func newTestServer(t *testing.T, engine Transcriber, token string) *Server {
	t.Helper()
	srv, err := New(Config{Bind: "127.0.0.1:0", Token: token, MaxUploadBytes: 1 << 20, WorkRoot: t.TempDir()}, engine, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv
}

func multipartRequest(t *testing.T, fields map[string]string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		_ = writer.WriteField(k, v)
	}
	if file != nil {
		part, err := writer.CreateFormFile("file", "clip.mp3")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write(file)
	}
	_ = writer.Close()
	req := httptest.NewRequest(http.MethodPost, "/transcribe", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubEngine{}, "")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" || resp.Service != ServiceName || resp.Model != "large-v3" {
		t.Fatalf("unexpected health %+v", resp)
	}
}

func TestTranscribeHandler(t *testing.T) {
	engine := &stubEngine{}
	srv := newTestServer(t, engine, "")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, multipartRequest(t, map[string]string{"language": "de", "fast": "true"}, []byte("audio")))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp transcribeResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Text != "transcribed audio" || resp.Language != "de" {
		t.Fatalf("unexpected response %+v", resp)
	}
	req := engine.requests[0]
	if !req.Fast || req.Language != "de" || filepath.Ext(req.Source) != ".mp3" {
		t.Fatalf("unexpected engine request %+v", req)
	}
	if _, err := os.Stat(filepath.Dir(req.Source)); !os.IsNotExist(err) {
		t.Fatalf("upload directory should be removed, stat err = %v", err)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	srv := newTestServer(t, &stubEngine{}, "")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, multipartRequest(t, map[string]string{"language": "en"}, nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp errorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "No file provided" {
		t.Fatalf("unexpected error body %+v", resp)
	}
}

func TestTranscribeEngineFailure(t *testing.T) {
	srv := newTestServer(t, &stubEngine{err: errors.New("cuda out of memory")}, "")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, multipartRequest(t, nil, []byte("audio")))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var resp errorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "cuda out of memory" {
		t.Fatalf("unexpected error body %+v", resp)
	}
}

func TestTranscribeRejectsOversizedUpload(t *testing.T) {
	engine := &stubEngine{}
	srv := newTestServer(t, engine, "")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, multipartRequest(t, nil, bytes.Repeat([]byte{1}, 2<<20)))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", w.Code, w.Body.String())
	}
	if len(engine.requests) != 0 {
		t.Fatal("engine should not run for oversized uploads")
	}
}

func TestTranscribeMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &stubEngine{}, "")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transcribe", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestTokenRequired(t *testing.T) {
	srv := newTestServer(t, &stubEngine{}, "s3cret")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", w.Code)
	}
}

func TestServeWithRemoteWorkerClient(t *testing.T) {
	engine := &stubEngine{}
	srv := newTestServer(t, engine, "tok")
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()

	audio := testsupport.WriteAudio(t, filepath.Join(t.TempDir(), "clip.mp3"), 64)
	client := remoteworker.New("http://"+listener.Addr().String(), 5*time.Second).WithToken("tok")
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
	result, err := client.Transcribe(context.Background(), audio, "")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if !strings.HasPrefix(result.Text, "transcribed ID3") || result.Language != "en" {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(engine.payloads) != 1 || len(engine.payloads[0]) != 64 {
		t.Fatalf("expected the 64-byte upload to reach the engine, got %d payloads", len(engine.payloads))
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New(Config{Bind: ":0"}, nil, nil); err == nil {
		t.Fatal("expected error without engine")
	}
	if _, err := New(Config{}, &stubEngine{}, nil); err == nil {
		t.Fatal("expected error without bind")
	}
}
