package videoref

import (
	"net/url"
	"strings"

	"fastscribe/internal/services"
)

// IDLength is the fixed length of a video identifier.
const IDLength = 11

const (
	watchURLPrefix = "https://www.youtube.com/watch?v="
	embedURLPrefix = "https://www.youtube.com/embed/"
)

// Reference is a resolved video reference.
type Reference struct {
	Raw string
	ID  string
}

// URL returns the canonical watch URL for the reference.
func (r Reference) URL() string {
	return watchURLPrefix + r.ID
}

// EmbedURL returns the embeddable player URL for the reference.
func (r Reference) EmbedURL() string {
	return embedURLPrefix + r.ID
}

func (r Reference) String() string {
	return r.ID
}

// Resolve extracts the video identifier from input. Recognised shapes are
// tried in order: short link, watch query, embed path, bare identifier.
func Resolve(input string) (Reference, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Reference{}, invalid(input, "empty reference")
	}

	if u, ok := parseURL(raw); ok {
		host := strings.ToLower(u.Hostname())
		switch {
		case host == "youtu.be" || host == "www.youtu.be":
			return fromCandidate(input, firstSegment(u.Path))
		case isYouTubeHost(host):
			path := strings.TrimSuffix(u.Path, "/")
			if path == "/watch" {
				return fromCandidate(input, u.Query().Get("v"))
			}
			if rest, found := strings.CutPrefix(path, "/embed/"); found {
				return fromCandidate(input, firstSegment(rest))
			}
			return Reference{}, invalid(input, "unrecognised youtube path")
		}
	}

	if ValidID(raw) {
		return Reference{Raw: input, ID: raw}, nil
	}
	return Reference{}, invalid(input, "no known reference shape")
}

// Valid reports whether input resolves to a video reference.
func Valid(input string) bool {
	_, err := Resolve(input)
	return err == nil
}

// ValidID reports whether id is exactly 11 characters drawn from
// [A-Za-z0-9_-].
func ValidID(id string) bool {
	if len(id) != IDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}

func fromCandidate(input, candidate string) (Reference, error) {
	if !ValidID(candidate) {
		return Reference{}, invalid(input, "malformed video identifier")
	}
	return Reference{Raw: input, ID: candidate}, nil
}

// parseURL accepts inputs with or without a scheme. Bare identifiers never
// contain a dot or slash, so they never parse as a URL here.
func parseURL(raw string) (*url.URL, bool) {
	if !strings.ContainsAny(raw, "./") {
		return nil, false
	}
	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + strings.TrimPrefix(candidate, "//")
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return nil, false
	}
	return u, true
}

func isYouTubeHost(host string) bool {
	return host == "youtube.com" || strings.HasSuffix(host, ".youtube.com") ||
		host == "youtube-nocookie.com" || strings.HasSuffix(host, ".youtube-nocookie.com")
}

func firstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if idx := strings.IndexByte(path, '/'); idx >= 0 {
		path = path[:idx]
	}
	return path
}

func invalid(input, reason string) error {
	return services.Wrap(services.ErrInvalidReference, "resolve", strings.TrimSpace(input), reason, nil)
}
