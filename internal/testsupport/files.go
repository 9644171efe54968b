package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// id3Header makes fixtures sniff as MP3 to tools that check magic bytes.
var id3Header = []byte("ID3\x04\x00\x00\x00\x00\x00\x00")

// WriteAudio creates a fake audio file of roughly size bytes at path and
// returns path. The content is an ID3 header followed by filler; no decoder
// will accept it.
func WriteAudio(t testing.TB, path string, size int) string {
	t.Helper()

	if size < len(id3Header) {
		size = len(id3Header)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	content := append(append([]byte(nil), id3Header...), bytes.Repeat([]byte{0x42}, size-len(id3Header))...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
