package asseturl_test

import (
	"encoding/json"
	"testing"

	"forge/internal/asseturl"
)

func TestParseAcceptsAbsolutePathsAndURLs(t *testing.T) {
	cases := map[string]string{
		"/assets/a.script_bundle":          "file:///assets/a.script_bundle",
		"file:///assets/pipeline.toml":     "file:///assets/pipeline.toml",
		"https://cdn.example.com/x/y.json": "https://cdn.example.com/x/y.json",
	}
	for raw, want := range cases {
		got, err := asseturl.Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", raw, err)
		}
		if got.String() != want {
			t.Fatalf("Parse(%q) = %q, want %q", raw, got.String(), want)
		}
	}
}

func TestParseRejectsRelativeAndUnknownSchemes(t *testing.T) {
	for _, raw := range []string{"", "relative/path.txt", "ftp://host/file", "http:///nohost", "file://relative"} {
		if _, err := asseturl.Parse(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestExtension(t *testing.T) {
	cases := []struct {
		raw  string
		ext  string
		want bool
	}{
		{"file:///a/b/main.script_bundle", "script_bundle", true},
		{"file:///a/b/archive.tar.gz", "gz", true},
		{"file:///a/b/.env", "", false},
		{"file:///a/b/README", "", false},
		{"file:///a/b/trailing.", "", false},
	}
	for _, tc := range cases {
		ext, ok := asseturl.MustParse(tc.raw).Extension()
		if ext != tc.ext || ok != tc.want {
			t.Fatalf("Extension(%q) = %q,%v want %q,%v", tc.raw, ext, ok, tc.ext, tc.want)
		}
	}
	if !asseturl.MustParse("file:///x/y.script_bundle").HasExtension("script_bundle") {
		t.Fatal("expected HasExtension match")
	}
	if asseturl.MustParse("file:///x/y.script_bundle.txt").HasExtension("script_bundle") {
		t.Fatal("expected HasExtension mismatch")
	}
}

func TestRelativePath(t *testing.T) {
	manifest := asseturl.MustParse("file:///assets/game/pipeline.toml")
	cases := map[string]string{
		"file:///assets/game/scripts/main.script_bundle": "scripts/main.script_bundle",
		"file:///assets/game/top.script_bundle":          "top.script_bundle",
		"file:///other/place/x.script_bundle":            "other/place/x.script_bundle",
		"https://cdn.example.com/game/x.script_bundle":   "game/x.script_bundle",
	}
	for raw, want := range cases {
		if got := manifest.RelativePath(asseturl.MustParse(raw)); got != want {
			t.Fatalf("RelativePath(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestDirAndJoin(t *testing.T) {
	manifest := asseturl.MustParse("https://cdn.example.com/game/pipeline.json?v=1")
	if got := manifest.Dir().String(); got != "https://cdn.example.com/game/" {
		t.Fatalf("unexpected dir: %q", got)
	}
	joined, err := manifest.Join("scripts/a.script_bundle")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if joined.String() != "https://cdn.example.com/game/scripts/a.script_bundle" {
		t.Fatalf("unexpected join: %q", joined.String())
	}
	if _, err := manifest.Join("/abs"); err == nil {
		t.Fatal("expected error for absolute join")
	}
}

func TestReplaceExtension(t *testing.T) {
	cases := []struct{ in, ext, want string }{
		{"scripts/main.script_bundle", "script_bundle", "scripts/main.script_bundle"},
		{"scripts/main.wasm", ".script_bundle", "scripts/main.script_bundle"},
		{"scripts/main", "script_bundle", "scripts/main.script_bundle"},
		{"dir.v2/main", "bin", "dir.v2/main.bin"},
		{"a/b.txt", "", "a/b"},
	}
	for _, tc := range cases {
		if got := asseturl.ReplaceExtension(tc.in, tc.ext); got != tc.want {
			t.Fatalf("ReplaceExtension(%q, %q) = %q, want %q", tc.in, tc.ext, got, tc.want)
		}
	}
}

func TestJSONRoundTripsAsString(t *testing.T) {
	type wrapper struct {
		Location asseturl.URL `json:"location"`
	}
	in := wrapper{Location: asseturl.MustParse("file:///assets/a.bin")}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"location":"file:///assets/a.bin"}` {
		t.Fatalf("unexpected json: %s", data)
	}
	var out wrapper
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Location != in.Location {
		t.Fatalf("round trip mismatch: %v vs %v", out.Location, in.Location)
	}
}
