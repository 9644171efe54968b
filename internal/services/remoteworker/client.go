// Package remoteworker uploads audio to a self-hosted Whisper worker (see
// internal/worker) and returns its transcript.
package remoteworker

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
)

// DefaultTimeout bounds a single upload and transcription round trip.
const DefaultTimeout = 300 * time.Second

// Result is the worker's transcription response.
type Result struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Client talks to one worker.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New constructs a client for baseURL. A non-positive timeout uses
// DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient overrides the HTTP client (for testing).
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	if client != nil {
		c.httpClient = client
	}
	return c
}

// WithToken sets the bearer token sent with every request.
func (c *Client) WithToken(token string) *Client {
	c.token = strings.TrimSpace(token)
	return c
}

// Configured reports whether a worker URL is set.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// URL returns the worker base URL.
func (c *Client) URL() string {
	return c.baseURL
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("worker request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// StatusCode extracts the HTTP status from a worker error, or 0.
func StatusCode(err error) int {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// Transcribe uploads the file at audioPath to <baseURL>/transcribe. language
// is optional.
func (c *Client) Transcribe(ctx context.Context, audioPath, language string) (Result, error) {
	var result Result
	if !c.Configured() {
		return result, errors.New("worker transcribe: url not configured")
	}
	endpoint, err := url.JoinPath(c.baseURL, "transcribe")
	if err != nil {
		return result, fmt.Errorf("worker transcribe: build url: %w", err)
	}
	file, err := os.Open(audioPath)
	if err != nil {
		return result, fmt.Errorf("worker transcribe: open audio: %w", err)
	}
	defer file.Close()

	body, contentType := multipartBody(file, filepath.Base(audioPath), map[string]string{
		"language": strings.TrimSpace(language),
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return result, fmt.Errorf("worker transcribe: new request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result, fmt.Errorf("worker transcribe: http error (timeout=%s): %w", c.httpClient.Timeout, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("worker transcribe: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, &httpStatusError{StatusCode: resp.StatusCode, Body: string(payload)}
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		return result, fmt.Errorf("worker transcribe: decode response: %w", err)
	}
	result.Text = strings.TrimSpace(result.Text)
	if result.Text == "" {
		return result, errors.New("worker transcribe: empty transcript")
	}
	return result, nil
}

// Health calls GET <baseURL>/health.
func (c *Client) Health(ctx context.Context) error {
	if !c.Configured() {
		return errors.New("worker health: url not configured")
	}
	endpoint, err := url.JoinPath(c.baseURL, "health")
	if err != nil {
		return fmt.Errorf("worker health: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("worker health: new request: %w", err)
	}
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("worker health: %w", err)
	}
	defer resp.Body.Close()
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return &httpStatusError{StatusCode: resp.StatusCode, Body: string(payload)}
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// multipartBody streams file as the "file" part followed by the non-empty
// fields.
func multipartBody(file io.Reader, filename string, fields map[string]string) (io.Reader, string) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		err := func() error {
			for name, value := range fields {
				if value == "" {
					continue
				}
				if err := writer.WriteField(name, value); err != nil {
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
