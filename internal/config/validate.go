package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var noteStyles = map[string]struct{}{
	"detailed":      {},
	"summary":       {},
	"bullet_points": {},
	"flashcards":    {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBackends(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateWorker(); err != nil {
		return err
	}
	if err := c.validateCloud(); err != nil {
		return err
	}
	if err := c.validateLocal(); err != nil {
		return err
	}
	if err := c.validateNotes(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateBackends() error {
	if len(c.Backends.Order) == 0 {
		return errors.New("backends.order must list at least one backend")
	}
	seen := make(map[string]struct{}, len(c.Backends.Order))
	for idx, name := range c.Backends.Order {
		switch name {
		case BackendWorker, BackendCloud, BackendLocal:
		default:
			return fmt.Errorf("backends.order: unsupported backend %q (expected worker, cloud, or local)", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("backends.order: backend %q listed more than once", name)
		}
		seen[name] = struct{}{}
		if name == BackendLocal && idx != len(c.Backends.Order)-1 {
			return errors.New("backends.order: local must be the last backend")
		}
	}
	return nil
}

func (c *Config) validateDownload() error {
	switch c.Download.JSRuntime {
	case "auto", "deno", "node", "quickjs", "bun":
		return nil
	default:
		return fmt.Errorf("download.js_runtime: unsupported value %q (expected auto, deno, node, quickjs, or bun)", c.Download.JSRuntime)
	}
}

func (c *Config) validateWorker() error {
	if c.Worker.URL == "" {
		return nil
	}
	parsed, err := url.Parse(c.Worker.URL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("worker.url must be an http(s) URL, got %q", c.Worker.URL)
	}
	return nil
}

func (c *Config) validateCloud() error {
	if c.Cloud.RequestsPerMinute < 0 {
		return errors.New("cloud.requests_per_minute must be >= 0")
	}
	if !strings.HasPrefix(c.Cloud.BaseURL, "http://") && !strings.HasPrefix(c.Cloud.BaseURL, "https://") {
		return fmt.Errorf("cloud.base_url must be an http(s) URL, got %q", c.Cloud.BaseURL)
	}
	return nil
}

func (c *Config) validateLocal() error {
	switch c.Local.VADMethod {
	case "silero":
	case "pyannote":
		if c.Local.HFToken == "" {
			return errors.New("local.hf_token must be set when local.vad_method is pyannote (or set HF_TOKEN)")
		}
	default:
		return fmt.Errorf("local.vad_method: unsupported value %q (expected silero or pyannote)", c.Local.VADMethod)
	}
	return nil
}

func (c *Config) validateNotes() error {
	if _, ok := noteStyles[c.Notes.Style]; !ok {
		return fmt.Errorf("notes.style: unsupported value %q (expected detailed, summary, bullet_points, or flashcards)", c.Notes.Style)
	}
	if c.Notes.Temperature < 0 || c.Notes.Temperature > 2 {
		return errors.New("notes.temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
