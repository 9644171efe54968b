package ytdlp

import (
	"context"
	"errors"
	"strings"

	"fastscribe/internal/services"
)

// yt-dlp availability and live_status values.
const (
	availabilityPrivate        = "private"
	availabilityPremiumOnly    = "premium_only"
	availabilitySubscriberOnly = "subscriber_only"
	availabilityNeedsAuth      = "needs_auth"
	liveStatusLive             = "is_live"
	liveStatusUpcoming         = "is_upcoming"
)

// ClassifyInfo rejects videos the pipeline cannot transcribe. A nil result
// means the audio download may proceed.
func ClassifyInfo(info Info) error {
	if info.Availability == availabilityPrivate {
		return services.Wrap(services.ErrPrivateVideo, "download", "probe", "video is private", nil)
	}
	if info.IsLive || info.LiveStatus == liveStatusLive {
		return services.Wrap(services.ErrNotTranscribable, "download", "probe", "live streams cannot be transcribed until they finish", nil)
	}
	if info.LiveStatus == liveStatusUpcoming {
		return services.Wrap(services.ErrNotTranscribable, "download", "probe", "scheduled premiere has not started", nil)
	}
	if len(info.AudioFormats()) > 0 {
		return nil
	}
	switch info.Availability {
	case availabilityNeedsAuth, availabilityPremiumOnly, availabilitySubscriberOnly:
		return services.Wrap(services.ErrAuthRequired, "download", "probe", "video is "+info.Availability, nil)
	}
	return services.Wrap(services.ErrNoAudio, "download", "probe", "no audio formats available", nil)
}

var (
	privatePhrases = []string{"private video"}
	authPhrases    = []string{"sign in", "not a bot", "use --cookies", "login required", "members-only", "join this channel"}
	livePhrases    = []string{"live event will begin", "premieres in", "this live event", "is live now"}
)

// classifyFailure maps a failed yt-dlp invocation onto an acquisition marker by
// inspecting its diagnostic text.
func classifyFailure(operation string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrAcquisition, "download", operation, "interrupted", err)
	}
	text := strings.ToLower(err.Error())
	switch {
	case containsAny(text, privatePhrases):
		return services.Wrap(services.ErrPrivateVideo, "download", operation, "video is private", err)
	case containsAny(text, livePhrases):
		return services.Wrap(services.ErrNotTranscribable, "download", operation, "video is live or upcoming", err)
	case containsAny(text, authPhrases):
		return services.Wrap(services.ErrAuthRequired, "download", operation, "youtube requires authentication; configure cookies", err)
	default:
		return services.Wrap(services.ErrAcquisition, "download", operation, "", err)
	}
}

func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
