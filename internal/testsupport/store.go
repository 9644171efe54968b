package testsupport

import (
	"context"
	"testing"

	"fastscribe/internal/config"
	"fastscribe/internal/transcriptcache"
)

// MustOpenCache opens the transcript cache at cfg.Paths.CachePath and
// registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *transcriptcache.Store {
	t.Helper()

	store, err := transcriptcache.Open(cfg.Paths.CachePath)
	if err != nil {
		t.Fatalf("transcriptcache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedTranscript stores text for videoID under the given language hint.
func SeedTranscript(t testing.TB, store *transcriptcache.Store, videoID, hint, text string) {
	t.Helper()

	err := store.Put(context.Background(), transcriptcache.Entry{
		VideoID:  videoID,
		Hint:     hint,
		Language: hint,
		Backend:  "worker",
		Text:     text,
	})
	if err != nil {
		t.Fatalf("store.Put: %v", err)
	}
}
