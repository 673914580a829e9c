package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"forge/internal/asseturl"
)

// WriteFile writes content to path, creating parent directories, and returns
// the file URL of the written file.
func WriteFile(t testing.TB, path, content string) asseturl.URL {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return FileURL(t, path)
}

// FileURL converts an absolute filesystem path to an asset URL.
func FileURL(t testing.TB, path string) asseturl.URL {
	t.Helper()

	u, err := asseturl.FromPath(path)
	if err != nil {
		t.Fatalf("asset url for %s: %v", path, err)
	}
	return u
}
