package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBackends()
	c.normalizeDownload()
	c.normalizeWorker()
	c.normalizeCloud()
	if err := c.normalizeLocal(); err != nil {
		return err
	}
	c.normalizeNotes()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir = strings.TrimSpace(c.Paths.WorkDir); c.Paths.WorkDir != "" {
		if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
			return fmt.Errorf("paths.work_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CachePath) == "" {
		c.Paths.CachePath = defaultCachePath
	}
	if c.Paths.CachePath, err = expandPath(c.Paths.CachePath); err != nil {
		return fmt.Errorf("paths.cache_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeBackends() {
	order := make([]string, 0, len(c.Backends.Order))
	for _, entry := range c.Backends.Order {
		if entry = strings.ToLower(strings.TrimSpace(entry)); entry != "" {
			order = append(order, entry)
		}
	}
	if len(order) == 0 {
		order = append(order, DefaultBackendOrder...)
	}
	c.Backends.Order = order
}

func (c *Config) normalizeDownload() {
	c.Download.Binary = strings.TrimSpace(c.Download.Binary)
	if c.Download.Binary == "" {
		c.Download.Binary = defaultYTDLPBinary
	}
	c.Download.Cookies = strings.TrimSpace(c.Download.Cookies)
	if c.Download.Cookies == "" {
		if value, ok := os.LookupEnv("YTDLP_COOKIES"); ok {
			c.Download.Cookies = strings.TrimSpace(value)
		}
	}
	c.Download.JSRuntime = strings.ToLower(strings.TrimSpace(c.Download.JSRuntime))
	if c.Download.JSRuntime == "" {
		c.Download.JSRuntime = defaultJSRuntime
	}
}

func (c *Config) normalizeWorker() {
	c.Worker.URL = strings.TrimSpace(c.Worker.URL)
	if c.Worker.URL == "" {
		if value, ok := os.LookupEnv("WHISPER_API_URL"); ok {
			c.Worker.URL = strings.TrimSpace(value)
		}
	}
	c.Worker.URL = strings.TrimRight(c.Worker.URL, "/")
	if c.Worker.TimeoutSeconds <= 0 {
		c.Worker.TimeoutSeconds = defaultWorkerTimeout
	}
	c.Worker.Bind = strings.TrimSpace(c.Worker.Bind)
	if c.Worker.Bind == "" {
		c.Worker.Bind = defaultWorkerBind
		if port, ok := os.LookupEnv("PORT"); ok && strings.TrimSpace(port) != "" {
			c.Worker.Bind = "0.0.0.0:" + strings.TrimSpace(port)
		}
	}
	if c.Worker.MaxUploadMB <= 0 {
		c.Worker.MaxUploadMB = defaultWorkerMaxUploadMB
	}
	c.Worker.Token = strings.TrimSpace(c.Worker.Token)
	if c.Worker.Token == "" {
		if value, ok := os.LookupEnv("FASTSCRIBE_WORKER_TOKEN"); ok {
			c.Worker.Token = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeCloud() {
	c.Cloud.APIKeys = trimList(c.Cloud.APIKeys)
	c.Cloud.FallbackAPIKeys = trimList(c.Cloud.FallbackAPIKeys)
	c.Cloud.BaseURL = strings.TrimRight(strings.TrimSpace(c.Cloud.BaseURL), "/")
	if c.Cloud.BaseURL == "" {
		c.Cloud.BaseURL = defaultCloudBaseURL
	}
	c.Cloud.Model = strings.TrimSpace(c.Cloud.Model)
	if c.Cloud.Model == "" {
		c.Cloud.Model = defaultCloudModel
	}
}

func (c *Config) normalizeLocal() error {
	c.Local.Model = strings.TrimSpace(c.Local.Model)
	if c.Local.Model == "" {
		c.Local.Model = defaultLocalModel
	}
	c.Local.VADMethod = strings.ToLower(strings.TrimSpace(c.Local.VADMethod))
	if c.Local.VADMethod == "" {
		c.Local.VADMethod = defaultLocalVADMethod
	}
	c.Local.HFToken = strings.TrimSpace(c.Local.HFToken)
	if c.Local.HFToken == "" {
		if value, ok := os.LookupEnv("HUGGING_FACE_HUB_TOKEN"); ok {
			c.Local.HFToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.Local.HFToken = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Local.LockPath) == "" {
		c.Local.LockPath = defaultLocalLockPath
	}
	var err error
	if c.Local.LockPath, err = expandPath(strings.TrimSpace(c.Local.LockPath)); err != nil {
		return fmt.Errorf("local.lock_path: %w", err)
	}
	c.Local.FFmpegBinary = strings.TrimSpace(c.Local.FFmpegBinary)
	if c.Local.FFmpegBinary == "" {
		c.Local.FFmpegBinary = defaultFFmpegBinary
	}
	return nil
}

func (c *Config) normalizeNotes() {
	c.Notes.BaseURL = strings.TrimSpace(c.Notes.BaseURL)
	if c.Notes.BaseURL == "" {
		c.Notes.BaseURL = defaultNotesBaseURL
	}
	c.Notes.Model = strings.TrimSpace(c.Notes.Model)
	if c.Notes.Model == "" {
		c.Notes.Model = defaultNotesModel
	}
	c.Notes.Style = strings.ToLower(strings.TrimSpace(c.Notes.Style))
	if c.Notes.Style == "" {
		c.Notes.Style = defaultNotesStyle
	}
	if c.Notes.MaxTokens <= 0 {
		c.Notes.MaxTokens = defaultNotesMaxTokens
	}
	if c.Notes.TimeoutSeconds <= 0 {
		c.Notes.TimeoutSeconds = defaultNotesTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func trimList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
