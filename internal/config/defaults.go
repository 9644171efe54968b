package config

const (
	defaultConfigPath         = "~/.config/fastscribe/config.toml"
	defaultLogDir             = "~/.local/share/fastscribe/logs"
	defaultCachePath          = "~/.cache/fastscribe/transcripts.db"
	defaultYTDLPBinary        = "yt-dlp"
	defaultJSRuntime          = "auto"
	defaultWorkerTimeout      = 300
	defaultWorkerBind         = "0.0.0.0:8000"
	defaultWorkerMaxUploadMB  = 500
	defaultCloudBaseURL       = "https://api.openai.com/v1"
	defaultCloudModel         = "whisper-1"
	defaultLocalModel         = "large-v3"
	defaultLocalVADMethod     = "silero"
	defaultLocalLockPath      = "~/.cache/fastscribe/whisperx.lock"
	defaultFFmpegBinary       = "ffmpeg"
	defaultNotesBaseURL       = "https://api.openai.com/v1/chat/completions"
	defaultNotesModel         = "gpt-4o-mini"
	defaultNotesStyle         = "flashcards"
	defaultNotesTemperature   = 0.7
	defaultNotesMaxTokens     = 3000
	defaultNotesTimeout       = 120
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 30
	defaultCacheEnabled       = true
	defaultLocalEngineEnabled = false
)

// DefaultBackendOrder is the fallback order used when backends.order is unset.
var DefaultBackendOrder = []string{BackendWorker, BackendCloud, BackendLocal}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			CachePath: defaultCachePath,
		},
		Backends: Backends{
			Order: append([]string(nil), DefaultBackendOrder...),
		},
		Download: Download{
			Binary:    defaultYTDLPBinary,
			JSRuntime: defaultJSRuntime,
		},
		Worker: Worker{
			TimeoutSeconds: defaultWorkerTimeout,
			Bind:           defaultWorkerBind,
			MaxUploadMB:    defaultWorkerMaxUploadMB,
		},
		Cloud: Cloud{
			BaseURL: defaultCloudBaseURL,
			Model:   defaultCloudModel,
		},
		Local: Local{
			Enabled:      defaultLocalEngineEnabled,
			Model:        defaultLocalModel,
			VADMethod:    defaultLocalVADMethod,
			LockPath:     defaultLocalLockPath,
			FFmpegBinary: defaultFFmpegBinary,
		},
		Notes: Notes{
			BaseURL:        defaultNotesBaseURL,
			Model:          defaultNotesModel,
			Style:          defaultNotesStyle,
			Temperature:    defaultNotesTemperature,
			MaxTokens:      defaultNotesMaxTokens,
			TimeoutSeconds: defaultNotesTimeout,
		},
		Cache: Cache{
			Enabled: defaultCacheEnabled,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
