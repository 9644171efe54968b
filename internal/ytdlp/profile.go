package ytdlp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fastscribe/internal/services"
)

// Profile selects how yt-dlp authenticates against YouTube. The two profiles
// are mutually exclusive.
type Profile int

const (
	// ProfileLightweight uses the android player client without cookies.
	ProfileLightweight Profile = iota
	// ProfileCookies passes a browser cookie store or a cookie file.
	ProfileCookies
)

func (p Profile) String() string {
	switch p {
	case ProfileCookies:
		return "cookies"
	default:
		return "lightweight"
	}
}

// LightweightExtractorArgs is the extractor configuration used when no cookies
// are available.
const LightweightExtractorArgs = "youtube:player_client=android;skip=hls,dash"

var knownBrowsers = map[string]struct{}{
	"brave":    {},
	"chrome":   {},
	"chromium": {},
	"edge":     {},
	"firefox":  {},
	"opera":    {},
	"safari":   {},
	"vivaldi":  {},
	"whale":    {},
}

type cookieKind int

const (
	cookieNone cookieKind = iota
	cookieBrowser
	cookieFile
)

// CookieSource names where yt-dlp should read cookies from: a browser store
// or a cookie file, never both. Build one with ParseCookieSource; the zero
// value means no cookies.
type CookieSource struct {
	kind  cookieKind
	value string
}

// ParseCookieSource interprets raw as a browser spec when its leading name is
// a browser yt-dlp knows, and as a cookie file path otherwise.
func ParseCookieSource(raw string) CookieSource {
	value := strings.TrimSpace(raw)
	if value == "" {
		return CookieSource{}
	}
	name := value
	if idx := strings.IndexAny(name, "+:"); idx >= 0 {
		name = name[:idx]
	}
	if _, ok := knownBrowsers[strings.ToLower(name)]; ok {
		return CookieSource{kind: cookieBrowser, value: value}
	}
	return CookieSource{kind: cookieFile, value: value}
}

// Browser returns the yt-dlp browser spec, such as "firefox" or
// "chrome+gnomekeyring:Profile 1", or "" for other sources.
func (c CookieSource) Browser() string {
	if c.kind != cookieBrowser {
		return ""
	}
	return c.value
}

// File returns the Netscape-format cookie file path, or "" for other sources.
func (c CookieSource) File() string {
	if c.kind != cookieFile {
		return ""
	}
	return c.value
}

// IsZero reports whether no cookie source is configured.
func (c CookieSource) IsZero() bool {
	return c.kind == cookieNone
}

// Profile returns the authentication profile implied by the source.
func (c CookieSource) Profile() Profile {
	if c.IsZero() {
		return ProfileLightweight
	}
	return ProfileCookies
}

func (c CookieSource) String() string {
	switch c.kind {
	case cookieBrowser:
		return "browser:" + c.value
	case cookieFile:
		return "file:" + c.value
	default:
		return "none"
	}
}

// profileArgs returns the yt-dlp flags for the source's profile. A cookie file
// that does not exist is a configuration error.
func (c CookieSource) profileArgs() ([]string, error) {
	switch c.kind {
	case cookieBrowser:
		return []string{"--cookies-from-browser", c.value}, nil
	case cookieFile:
		path, err := resolveCookiesPath(c.value)
		if err != nil {
			return nil, services.Wrap(services.ErrFatalConfig, "download", "resolve cookies", "", err)
		}
		return []string{"--cookies", path}, nil
	default:
		return []string{"--extractor-args", LightweightExtractorArgs}, nil
	}
}

func resolveCookiesPath(path string) (string, error) {
	p := strings.TrimSpace(path)
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve cookies path %s: %w", p, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cookies file %s: %w", abs, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("cookies file %s is a directory", abs)
	}
	return abs, nil
}
