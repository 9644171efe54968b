package whisperx

import "strings"

// Config captures runtime settings for the local engine.
type Config struct {
	// Model is the WhisperX model name, e.g. "large-v3".
	Model       string
	CUDAEnabled bool
	// VADMethod is "silero" or "pyannote"; pyannote needs HFToken.
	VADMethod string
	HFToken   string
	// LockPath is the host-wide inference lock. Empty disables locking.
	LockPath string
}

func (c Config) withDefaults() Config {
	c.Model = strings.TrimSpace(c.Model)
	if c.Model == "" {
		c.Model = DefaultModel
	}
	c.VADMethod = strings.ToLower(strings.TrimSpace(c.VADMethod))
	if c.VADMethod == "" {
		c.VADMethod = VADMethodSilero
	}
	return c
}

// decoding holds the beam search settings for one request.
type decoding struct {
	beamSize string
	bestOf   string
}

var (
	// accurateDecoding is used for normal requests.
	accurateDecoding = decoding{beamSize: BeamSize, bestOf: BestOf}
	// fastDecoding is greedy; the worker selects it with fast=true.
	fastDecoding = decoding{beamSize: FastBeamSize, bestOf: FastBestOf}
)

func decodingFor(fast bool) decoding {
	if fast {
		return fastDecoding
	}
	return accurateDecoding
}

const (
	DefaultModel      = "large-v3"
	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"

	BeamSize     = "10"
	BestOf       = "10"
	FastBeamSize = "1"
	FastBestOf   = "1"

	BatchSize         = "4"
	ChunkSize         = "15"
	VADOnset          = "0.08"
	VADOffset         = "0.07"
	Temperature       = "0.0"
	Patience          = "1.0"
	SegmentResolution = "sentence"
	OutputFormat      = "all"

	CPUDevice      = "cpu"
	CUDADevice     = "cuda"
	CPUComputeType = "float32"

	CUDAIndexURL = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL = "https://pypi.org/simple"
)

// Prepared WAV format: mono 16 kHz signed 16-bit PCM.
const (
	prepSampleRate = "16000"
	prepChannels   = "1"
	prepCodec      = "pcm_s16le"
)

// Command names for external tools.
const (
	UVXCommand    = "uvx"
	FFmpegCommand = "ffmpeg"
)
