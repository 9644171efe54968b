package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"fastscribe/internal/logging"
	"fastscribe/internal/services"
	"fastscribe/internal/services/whisperx"
)

// ServiceName is reported by /health.
const ServiceName = "fastscribe-worker"

const (
	multipartMemory = 32 << 20
	shutdownTimeout = 5 * time.Second
)

// Transcriber is the engine behind /transcribe.
type Transcriber interface {
	Transcribe(ctx context.Context, req whisperx.Request) (whisperx.TranscribeResult, error)
	Model() string
}

// Config controls the server.
type Config struct {
	Bind           string
	Token          string
	MaxUploadBytes int64
	// WorkRoot holds per-request upload directories.
	WorkRoot string
}

// Server is the worker HTTP server.
type Server struct {
	cfg    Config
	engine Transcriber
	logger *slog.Logger
	server *http.Server
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Model   string `json:"model"`
}

type transcribeResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New builds a server around engine.
func New(cfg Config, engine Transcriber, logger *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, services.Wrap(services.ErrFatalConfig, "worker", "init", "transcription engine required", nil)
	}
	if strings.TrimSpace(cfg.Bind) == "" {
		return nil, services.Wrap(services.ErrFatalConfig, "worker", "init", "bind address required", nil)
	}
	if cfg.WorkRoot == "" {
		cfg.WorkRoot = os.TempDir()
	}
	s := &Server{
		cfg:    cfg,
		engine: engine,
		logger: logging.NewComponentLogger(logger, "worker"),
	}
	s.server = &http.Server{
		Addr:              cfg.Bind,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", authMiddleware(s.cfg.Token, s.handleHealth))
	mux.HandleFunc("/transcribe", authMiddleware(s.cfg.Token, s.handleTranscribe))
	return mux
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Bind)
	if err != nil {
		return fmt.Errorf("worker listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(listener)
	}()
	s.logger.Info("worker listening",
		logging.String(logging.FieldEventType, "worker_listening"),
		logging.String("address", listener.Addr().String()),
		logging.String("model", s.engine.Model()),
		logging.Bool("auth", s.cfg.Token != ""),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("worker serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("worker shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Service: ServiceName, Model: s.engine.Model()})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	requestID := uuid.NewString()
	ctx := services.WithRequestID(r.Context(), requestID)
	logger := logging.WithContext(ctx, s.logger)

	if s.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "File too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No file provided"})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No file provided"})
		return
	}
	defer file.Close()

	dir, err := os.MkdirTemp(s.cfg.WorkRoot, "fastscribe-worker-")
	if err != nil {
		logger.Error("create upload directory failed", logging.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	defer os.RemoveAll(dir)

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" || len(ext) > 8 {
		ext = ".audio"
	}
	source := filepath.Join(dir, "upload"+ext)
	if err := saveUpload(file, source); err != nil {
		logger.Error("save upload failed", logging.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	language := strings.TrimSpace(r.FormValue("language"))
	fast := strings.EqualFold(strings.TrimSpace(r.FormValue("fast")), "true")
	logger.Info("transcription request",
		logging.String(logging.FieldEventType, "worker_request"),
		logging.Int64("bytes", header.Size),
		logging.String("language", language),
		logging.Bool("fast", fast),
	)

	started := time.Now()
	result, err := s.engine.Transcribe(ctx, whisperx.Request{
		Source:    source,
		OutputDir: filepath.Join(dir, "out"),
		Language:  language,
		Fast:      fast,
	})
	if err != nil {
		logger.Error("transcription failed",
			logging.String(logging.FieldEventType, "worker_failed"),
			logging.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	logger.Info("transcription served",
		logging.String(logging.FieldEventType, "worker_success"),
		logging.Int("characters", len(result.Text)),
		logging.Duration("elapsed", time.Since(started)),
	)
	writeJSON(w, http.StatusOK, transcribeResponse{Text: result.Text, Language: result.Language})
}

func saveUpload(src io.Reader, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return fmt.Errorf("write upload: %w", err)
	}
	return out.Close()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
