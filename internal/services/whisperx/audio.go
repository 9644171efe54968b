package whisperx

import (
	"context"
	"fmt"
)

// buildFFmpegPrepareArgs converts the first audio stream of source to mono
// 16kHz PCM WAV.
func buildFFmpegPrepareArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-ac", prepChannels,
		"-ar", prepSampleRate,
		"-c:a", prepCodec,
		dest,
	}
}

// PrepareAudio writes a WhisperX-ready WAV of source to dest.
func (s *Service) PrepareAudio(ctx context.Context, source, dest string) error {
	if source == "" || dest == "" {
		return fmt.Errorf("prepare audio: source and destination required")
	}
	if err := s.run(ctx, s.ffmpegBinary, buildFFmpegPrepareArgs(source, dest)...); err != nil {
		return fmt.Errorf("ffmpeg prepare: %w", err)
	}
	return nil
}
