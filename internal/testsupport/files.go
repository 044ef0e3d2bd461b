package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path and its parents with the given content. Empty
// content writes a single byte so media files are never zero-length.
func WriteFile(t testing.TB, path string, content string) {
	t.Helper()

	if content == "" {
		content = "B"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Mkdir creates a directory tree under the test library.
func Mkdir(t testing.TB, path string) {
	t.Helper()

	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}
