package videoref_test

import (
	"errors"
	"testing"

	"fastscribe/internal/services"
	"fastscribe/internal/videoref"
)

func TestResolveRecognisedShapes(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	cases := []struct {
		name  string
		input string
	}{
		{"short link", "https://youtu.be/" + id},
		{"short link with query", "https://youtu.be/" + id + "?t=42"},
		{"short link without scheme", "youtu.be/" + id},
		{"watch query", "https://www.youtube.com/watch?v=" + id},
		{"watch query extra params", "https://www.youtube.com/watch?list=PL123&v=" + id + "&t=10s"},
		{"mobile watch", "https://m.youtube.com/watch?v=" + id},
		{"watch without scheme", "www.youtube.com/watch?v=" + id},
		{"embed", "https://www.youtube.com/embed/" + id},
		{"embed with query", "https://www.youtube.com/embed/" + id + "?autoplay=1"},
		{"bare id", id},
		{"bare id padded", "  " + id + "\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := videoref.Resolve(tc.input)
			if err != nil {
				t.Fatalf("Resolve(%q) returned error: %v", tc.input, err)
			}
			if ref.ID != id {
				t.Fatalf("Resolve(%q) id = %q, want %q", tc.input, ref.ID, id)
			}
			if ref.Raw != tc.input {
				t.Fatalf("expected raw input to be preserved, got %q", ref.Raw)
			}
		})
	}
}

func TestResolveRejectsUnknownShapes(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not a url",
		"dQw4w9WgXc",
		"dQw4w9WgXcQQ",
		"dQw4w9WgX!Q",
		"https://youtu.be/",
		"https://youtu.be/short",
		"https://www.youtube.com/watch",
		"https://www.youtube.com/watch?v=bad",
		"https://www.youtube.com/channel/UC1234567890",
		"https://example.com/watch?v=dQw4w9WgXcQ",
		"https://vimeo.com/123456789",
	}
	for _, input := range inputs {
		_, err := videoref.Resolve(input)
		if err == nil {
			t.Fatalf("Resolve(%q) expected error", input)
		}
		if !errors.Is(err, services.ErrInvalidReference) {
			t.Fatalf("Resolve(%q) error = %v, want ErrInvalidReference", input, err)
		}
	}
}

func TestResolveShortLinkWinsOverEmbeddedWatchParameter(t *testing.T) {
	ref, err := videoref.Resolve("https://youtu.be/aaaaaaaaaaa?v=bbbbbbbbbbb")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref.ID != "aaaaaaaaaaa" {
		t.Fatalf("expected short-link id, got %q", ref.ID)
	}
}

func TestReferenceURLs(t *testing.T) {
	ref, err := videoref.Resolve("https://youtu.be/abc_DEF-123")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got := ref.URL(); got != "https://www.youtube.com/watch?v=abc_DEF-123" {
		t.Fatalf("unexpected watch url %q", got)
	}
	if got := ref.EmbedURL(); got != "https://www.youtube.com/embed/abc_DEF-123" {
		t.Fatalf("unexpected embed url %q", got)
	}
}

func TestResolveIsIdempotentOnCanonicalURL(t *testing.T) {
	first, err := videoref.Resolve("https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	second, err := videoref.Resolve(first.URL())
	if err != nil {
		t.Fatalf("Resolve(canonical) returned error: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("canonical round trip changed id: %q vs %q", first.ID, second.ID)
	}
}

func TestValid(t *testing.T) {
	if !videoref.Valid("https://www.youtube.com/watch?v=dQw4w9WgXcQ") {
		t.Fatal("expected watch url to be valid")
	}
	if videoref.Valid("https://example.com") {
		t.Fatal("expected foreign url to be invalid")
	}
}
