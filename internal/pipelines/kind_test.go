package pipelines_test

import (
	"context"
	"errors"
	"testing"

	"forge/internal/asseturl"
	"forge/internal/pipelines"
	"forge/internal/services"
	"forge/internal/testsupport"
)

func TestParseKindAcceptsAliases(t *testing.T) {
	tests := map[string]pipelines.Kind{
		"ScriptBundles":  pipelines.ScriptBundles,
		"script_bundles": pipelines.ScriptBundles,
		"SCRIPT-BUNDLES": pipelines.ScriptBundles,
		" models ":       pipelines.Models,
		"Materials":      pipelines.Materials,
		"audio":          pipelines.Audio,
	}
	for in, want := range tests {
		got, err := pipelines.ParseKind(in)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseKind(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseKindRejectsUnknownAndEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "Textures", "script"} {
		if _, err := pipelines.ParseKind(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestKindLabel(t *testing.T) {
	if got := pipelines.ScriptBundles.Label(); got != "Script Bundles" {
		t.Fatalf("unexpected label %q", got)
	}
}

// Every declared kind either has a strategy or fails loudly; none may return
// an empty result silently.
func TestEveryKindDispatchesOrFails(t *testing.T) {
	manifest := asseturl.MustParse("file:///project/pipeline.toml")
	for _, kind := range pipelines.Kinds() {
		batch := &pipelines.ProcessContext{
			Assets:   testsupport.NewMemoryAssets(),
			Sink:     testsupport.NewMemorySink(),
			Reporter: &testsupport.Recorder{},
		}
		pipeline := pipelines.Pipeline{Kind: kind}
		out, err := pipeline.Process(context.Background(), batch, manifest)
		if kind.Supported() {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", kind, err)
			}
			continue
		}
		if !errors.Is(err, pipelines.ErrUnsupportedKind) {
			t.Fatalf("%s: expected ErrUnsupportedKind, got %v", kind, err)
		}
		if !errors.Is(err, services.ErrNotImplemented) {
			t.Fatalf("%s: expected not implemented marker, got %v", kind, err)
		}
		if out != nil {
			t.Fatalf("%s: expected no artifacts, got %d", kind, len(out))
		}
	}
}

func TestUndeclaredKindIsFatal(t *testing.T) {
	pipeline := pipelines.Pipeline{Kind: pipelines.Kind("Textures")}
	_, err := pipeline.Process(context.Background(), &pipelines.ProcessContext{}, asseturl.MustParse("file:///p/pipeline.json"))
	if !errors.Is(err, pipelines.ErrUndeclaredKind) {
		t.Fatalf("expected ErrUndeclaredKind, got %v", err)
	}
	if errors.Is(err, pipelines.ErrUnsupportedKind) {
		t.Fatal("undeclared kinds must be distinguishable from unimplemented ones")
	}
	if !pipelines.IsFatal(err) {
		t.Fatal("expected undeclared kind to be fatal")
	}
}
