package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"forge/internal/services"
)

func TestCollectInputsSkipsIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"b.txt", "a/pipeline.toml", "node_modules/x.js", "a/node_modules/y.js", "z/.git/config"} {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := CollectInputs(context.Background(), root, []string{"node_modules", ".git"})
	if err != nil {
		t.Fatalf("CollectInputs: %v", err)
	}
	var got []string
	for _, file := range files {
		local, _ := file.LocalPath()
		rel, _ := filepath.Rel(root, local)
		got = append(got, filepath.ToSlash(rel))
	}
	want := []string{"a/pipeline.toml", "b.txt"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestCollectInputsMissingRoot(t *testing.T) {
	_, err := CollectInputs(context.Background(), filepath.Join(t.TempDir(), "missing"), nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestParseFileList(t *testing.T) {
	input := `
# inputs for the nightly build
https://cdn.example.com/game/pipeline.json
/abs/path/a.script_bundle
relative/b.script_bundle
`
	files, err := parseFileList(strings.NewReader(input), "/lists")
	if err != nil {
		t.Fatalf("parseFileList: %v", err)
	}
	want := []string{
		"https://cdn.example.com/game/pipeline.json",
		"file:///abs/path/a.script_bundle",
		"file:///lists/relative/b.script_bundle",
	}
	if len(files) != len(want) {
		t.Fatalf("got %v", files)
	}
	for i, file := range files {
		if file.String() != want[i] {
			t.Fatalf("entry %d = %s, want %s", i, file, want[i])
		}
	}
}

func TestParseFileListRejectsBadEntries(t *testing.T) {
	_, err := parseFileList(strings.NewReader("ftp://example.com/a.bin\n"), "/lists")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("error should name the line: %v", err)
	}
}

func TestReadFileList(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "inputs.txt")
	if err := os.WriteFile(list, []byte("a.script_bundle\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	files, err := ReadFileList(list)
	if err != nil {
		t.Fatalf("ReadFileList: %v", err)
	}
	local, ok := files[0].LocalPath()
	if len(files) != 1 || !ok || local != filepath.Join(dir, "a.script_bundle") {
		t.Fatalf("unexpected files %v", files)
	}
}
