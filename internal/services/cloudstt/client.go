// Package cloudstt calls an OpenAI-compatible speech-to-text endpoint
// (POST /audio/transcriptions) with one audio file per request.
//
// Requests are paced by an optional token-bucket limiter so that a burst of
// runs sharing one key stays under the provider's per-minute quota. The
// client never retries; fallback is the orchestrator's job.
package cloudstt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	langpkg "fastscribe/internal/language"
)

// Defaults.
const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "whisper-1"
	ResponseFormat     = "verbose_json"
	defaultHTTPTimeout = 10 * time.Minute
)

// Config captures the cloud endpoint settings.
type Config struct {
	BaseURL           string
	Model             string
	RequestsPerMinute int
	TimeoutSeconds    int
}

// Result is a completed transcription.
type Result struct {
	Text     string
	Language string
	Duration time.Duration
}

// Client wraps the transcription endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLimiter overrides the request pacing limiter. A nil limiter disables
// pacing.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// NewClient constructs a client. RequestsPerMinute <= 0 disables pacing.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	if cfg.RequestsPerMinute > 0 {
		client.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Model returns the configured model name for logging.
func (c *Client) Model() string {
	return c.cfg.Model
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("cloud transcribe: http %d: %s", e.StatusCode, summarize(e.Body))
}

// StatusCode extracts the HTTP status from a client error, or 0.
func StatusCode(err error) int {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

type verboseResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Error    *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Transcribe uploads audioPath and returns the transcript. credential is the
// bearer token; language is an optional hint in any form language.ToISO2
// accepts.
func (c *Client) Transcribe(ctx context.Context, credential, audioPath, language string) (Result, error) {
	var result Result
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return result, errors.New("cloud transcribe: credential required")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("cloud transcribe: rate limit wait: %w", err)
		}
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "audio", "transcriptions")
	if err != nil {
		return result, fmt.Errorf("cloud transcribe: build url: %w", err)
	}
	file, err := os.Open(audioPath)
	if err != nil {
		return result, fmt.Errorf("cloud transcribe: open audio: %w", err)
	}
	defer file.Close()

	fields := [][2]string{
		{"model", c.cfg.Model},
		{"response_format", ResponseFormat},
	}
	if lang := langpkg.ToISO2(language); lang != "" {
		fields = append(fields, [2]string{"language", lang})
	}
	body, contentType := multipartBody(file, filepath.Base(audioPath), fields)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return result, fmt.Errorf("cloud transcribe: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result, fmt.Errorf("cloud transcribe: http error (timeout=%s): %w", c.httpClient.Timeout, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("cloud transcribe: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return result, &httpStatusError{StatusCode: resp.StatusCode, Body: string(payload)}
	}
	var decoded verboseResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return result, fmt.Errorf("cloud transcribe: decode response: %w", err)
	}
	if decoded.Error != nil {
		return result, fmt.Errorf("cloud transcribe: api error: %s", strings.TrimSpace(decoded.Error.Message))
	}
	result.Text = strings.TrimSpace(decoded.Text)
	if result.Text == "" {
		return result, errors.New("cloud transcribe: empty transcript")
	}
	// verbose_json reports the spoken language by name ("english").
	result.Language = langpkg.ToISO2(decoded.Language)
	if result.Language == "" {
		result.Language = langpkg.ToISO2(language)
	}
	result.Duration = time.Duration(decoded.Duration * float64(time.Second))
	return result, nil
}

func multipartBody(file io.Reader, filename string, fields [][2]string) (io.Reader, string) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		err := func() error {
			for _, field := range fields {
				if err := writer.WriteField(field[0], field[1]); err != nil {
					return err
				}
			}
			part, err := writer.CreateFormFile("file", filename)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, file); err != nil {
				return err
			}
			return writer.Close()
		}()
		pw.CloseWithError(err)
	}()
	return pr, writer.FormDataContentType()
}

func summarize(body string) string {
	clean := strings.Join(strings.Fields(body), " ")
	const limit = 200
	if runes := []rune(clean); len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return clean
}
