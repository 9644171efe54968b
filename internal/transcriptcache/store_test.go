package transcriptcache

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "transcripts.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "dQw4w9WgXcQ", ""); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	entry := Entry{VideoID: "dQw4w9WgXcQ", Language: "en", Backend: "cloud", Text: "hello"}
	if err := store.Put(ctx, entry); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, "dQw4w9WgXcQ", "")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Text != "hello" || got.Language != "en" || got.Backend != "cloud" || got.CreatedAt.IsZero() {
		t.Fatalf("unexpected entry %+v", got)
	}
	if _, ok, _ := store.Get(ctx, "dQw4w9WgXcQ", "es"); ok {
		t.Fatal("different hint must miss")
	}
}

func TestPutReplaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	_ = store.Put(ctx, Entry{VideoID: "dQw4w9WgXcQ", Hint: "EN", Text: "first"})
	if err := store.Put(ctx, Entry{VideoID: "dQw4w9WgXcQ", Hint: "en", Text: "second"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, _ := store.Get(ctx, "dQw4w9WgXcQ", "en")
	if !ok || got.Text != "second" {
		t.Fatalf("expected replaced entry, got %+v", got)
	}
	entries, err := store.List(ctx, 0)
	if err != nil || len(entries) != 1 {
		t.Fatalf("List: %v %v", entries, err)
	}
}

func TestPutValidation(t *testing.T) {
	store := openTestStore(t)
	if err := store.Put(context.Background(), Entry{VideoID: "", Text: "x"}); err == nil {
		t.Fatal("expected error for empty video id")
	}
	if err := store.Put(context.Background(), Entry{VideoID: "dQw4w9WgXcQ", Text: " "}); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestListDeletePrune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_ = store.Put(ctx, Entry{VideoID: "aaaaaaaaaaa", Text: "old", CreatedAt: now.Add(-48 * time.Hour)})
	_ = store.Put(ctx, Entry{VideoID: "bbbbbbbbbbb", Text: "new", CreatedAt: now.Add(-time.Hour)})
	_ = store.Put(ctx, Entry{VideoID: "bbbbbbbbbbb", Hint: "de", Text: "neu", CreatedAt: now})

	entries, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 || entries[0].Text != "neu" || entries[1].Text != "new" {
		t.Fatalf("unexpected order %+v", entries)
	}

	removed, err := store.Prune(ctx, 24*time.Hour)
	if err != nil || removed != 1 {
		t.Fatalf("Prune removed %d, err %v", removed, err)
	}
	removed, err = store.Delete(ctx, "bbbbbbbbbbb")
	if err != nil || removed != 2 {
		t.Fatalf("Delete removed %d, err %v", removed, err)
	}
	if entries, _ := store.List(ctx, 0); len(entries) != 0 {
		t.Fatalf("expected empty cache, got %+v", entries)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error")
	}
}
