// Package ytdlp wraps the yt-dlp binary for the one job the pipeline needs:
// fetching a single video's audio track as mp3.
//
// A download always probes the video metadata first (yt-dlp -J) so that
// private, live, and silent videos are rejected with a precise marker from
// internal/services before any media is transferred. The authentication
// profile is derived from the optional CookieSource: without cookies the
// lightweight android player client is used, with cookies the browser store or
// cookie file is handed to yt-dlp.
package ytdlp
