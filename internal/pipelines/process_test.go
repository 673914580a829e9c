package pipelines_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"forge/internal/asseturl"
	"forge/internal/pipelines"
	"forge/internal/testsupport"
)

type harness struct {
	assets   *testsupport.MemoryAssets
	sink     *testsupport.MemorySink
	recorder *testsupport.Recorder
	files    []asseturl.URL
}

func newHarness() *harness {
	return &harness{
		assets:   testsupport.NewMemoryAssets(),
		sink:     testsupport.NewMemorySink(),
		recorder: &testsupport.Recorder{},
	}
}

func (h *harness) put(raw, content string) asseturl.URL {
	location := h.assets.Put(raw, content)
	h.files = append(h.files, location)
	return location
}

func (h *harness) batch() *pipelines.ProcessContext {
	return &pipelines.ProcessContext{
		Assets:   h.assets,
		Files:    h.files,
		Sink:     h.sink,
		Reporter: h.recorder,
	}
}

func names(assets []pipelines.OutAsset) []string {
	out := make([]string, 0, len(assets))
	for _, asset := range assets {
		out = append(out, asset.Name)
	}
	slices.Sort(out)
	return out
}

func TestProcessPipelinesScriptBundles(t *testing.T) {
	h := newHarness()
	h.put("file:///project/pipeline.json", `[{"type": "ScriptBundles", "tags": ["env"]}]`)
	first := h.put("file:///project/scripts/first.script_bundle", "bundle-one")
	second := h.put("file:///project/second.script_bundle", "bundle-two")
	h.put("file:///project/readme.txt", "ignored")

	out, err := pipelines.ProcessPipelines(context.Background(), h.batch())
	if err != nil {
		t.Fatalf("ProcessPipelines: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(out))
	}
	if errs := h.recorder.Errors(); len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}

	want := map[asseturl.URL]string{first: "bundle-one", second: "bundle-two"}
	for _, asset := range out {
		if asset.Type != pipelines.AssetTypeScriptBundle {
			t.Fatalf("unexpected type %q", asset.Type)
		}
		if asset.Hidden {
			t.Fatal("script bundles must not be hidden")
		}
		if !slices.Equal(asset.Tags, []string{"env"}) {
			t.Fatalf("unexpected tags %#v", asset.Tags)
		}
		if len(asset.Categories) != 0 {
			t.Fatalf("unexpected categories %#v", asset.Categories)
		}
		if !asset.Preview.IsNone() {
			t.Fatal("expected no preview")
		}
		if asset.Source == nil {
			t.Fatal("expected source file")
		}
		content, ok := want[*asset.Source]
		if !ok {
			t.Fatalf("unexpected source %s", asset.Source)
		}
		if asset.Name != asset.Source.FileName() {
			t.Fatalf("name %q does not match source file", asset.Name)
		}
		if asset.Content.Inline == nil {
			t.Fatal("expected inline content")
		}
		data, ok := h.sink.Get(*asset.Content.Inline)
		if !ok || string(data) != content {
			t.Fatalf("sink content for %s = %q, want %q", asset.Source, data, content)
		}
	}

	if _, ok := h.sink.Get(asseturl.MustParse("file:///sink/scripts/first.script_bundle")); !ok {
		t.Fatal("expected bundle written under its manifest-relative path")
	}
}

func TestProcessPipelinesStatusMessages(t *testing.T) {
	h := newHarness()
	manifest := h.put("file:///project/pipeline.toml", "[[pipelines]]\ntype = \"ScriptBundles\"\n")
	h.put("file:///project/a.script_bundle", "a")

	if _, err := pipelines.ProcessPipelines(context.Background(), h.batch()); err != nil {
		t.Fatalf("ProcessPipelines: %v", err)
	}
	statuses := h.recorder.Statuses()
	wantStart := "Script Bundles: processing " + manifest.String()
	wantDone := "Script Bundles: 1 assets from " + manifest.String()
	if !slices.Equal(statuses, []string{wantStart, wantDone}) {
		t.Fatalf("unexpected statuses %#v", statuses)
	}
}

func TestProcessPipelinesUnionAcrossManifests(t *testing.T) {
	for attempt := range 5 {
		h := newHarness()
		h.assets.Delay = time.Duration(attempt) * time.Millisecond
		h.put("file:///one/pipeline.toml", "[[pipelines]]\ntype = \"ScriptBundles\"\nsources = [\"*.script_bundle\"]\ntags = [\"one\"]\n")
		h.put("file:///two/pipeline.json", `{"pipelines": [{"type": "ScriptBundles", "sources": ["*.script_bundle"], "tags": ["two"]}]}`)
		h.put("file:///one/a.script_bundle", "a")
		h.put("file:///one/b.script_bundle", "b")
		h.put("file:///two/c.script_bundle", "c")

		out, err := pipelines.ProcessPipelines(context.Background(), h.batch())
		if err != nil {
			t.Fatalf("ProcessPipelines: %v", err)
		}
		got := make([]string, 0, len(out))
		for _, asset := range out {
			got = append(got, asset.Tags[0]+":"+asset.Name)
		}
		slices.Sort(got)
		want := []string{"one:a.script_bundle", "one:b.script_bundle", "two:c.script_bundle"}
		if !slices.Equal(got, want) {
			t.Fatalf("attempt %d: got %v want %v", attempt, got, want)
		}
	}
}

func TestProcessPipelinesPreservesDeclarationOrderWithinManifest(t *testing.T) {
	h := newHarness()
	h.put("file:///p/pipeline.json", `[
		{"type": "ScriptBundles", "sources": ["first/*"], "tags": ["first"]},
		{"type": "ScriptBundles", "sources": ["second/*"], "tags": ["second"]}
	]`)
	h.put("file:///p/second/b.script_bundle", "b")
	h.put("file:///p/first/a.script_bundle", "a")

	out, err := pipelines.ProcessPipelines(context.Background(), h.batch())
	if err != nil {
		t.Fatalf("ProcessPipelines: %v", err)
	}
	if len(out) != 2 || out[0].Tags[0] != "first" || out[1].Tags[0] != "second" {
		t.Fatalf("unexpected order %#v", out)
	}
}

func TestProcessPipelinesIsolatesFileFailures(t *testing.T) {
	h := newHarness()
	h.put("file:///p/pipeline.json", `[{"type": "ScriptBundles"}]`)
	for i := range 5 {
		h.put(fmt.Sprintf("file:///p/ok-%d.script_bundle", i), "ok")
	}
	broken := h.assets.Fail("file:///p/broken.script_bundle", errors.New("connection reset"))
	h.files = append(h.files, broken)

	out, err := pipelines.ProcessPipelines(context.Background(), h.batch())
	if err != nil {
		t.Fatalf("ProcessPipelines: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("expected 5 artifacts, got %d", len(out))
	}
	errs := h.recorder.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected exactly one reported error, got %v", errs)
	}
	var fileErr *pipelines.FileError
	if !errors.As(errs[0], &fileErr) {
		t.Fatalf("expected FileError, got %v", errs[0])
	}
	if fileErr.File != broken || fileErr.Kind != pipelines.ScriptBundles {
		t.Fatalf("unexpected file error %+v", fileErr)
	}
	if pipelines.IsFatal(errs[0]) {
		t.Fatal("file errors must not be fatal")
	}
}

func TestProcessPipelinesIsolatesSinkFailures(t *testing.T) {
	h := newHarness()
	h.put("file:///p/pipeline.json", `[{"type": "ScriptBundles"}]`)
	h.put("file:///p/a.script_bundle", "a")
	h.put("file:///p/b.script_bundle", "b")
	h.sink.Fail("b.script_bundle", errors.New("disk full"))

	out, err := pipelines.ProcessPipelines(context.Background(), h.batch())
	if err != nil {
		t.Fatalf("ProcessPipelines: %v", err)
	}
	if !slices.Equal(names(out), []string{"a.script_bundle"}) {
		t.Fatalf("unexpected artifacts %v", names(out))
	}
	if len(h.recorder.Errors()) != 1 {
		t.Fatalf("expected one error, got %v", h.recorder.Errors())
	}
}

func TestProcessPipelinesIsolatesBrokenManifest(t *testing.T) {
	h := newHarness()
	h.put("file:///good/pipeline.json", `[{"type": "ScriptBundles", "sources": ["*.script_bundle"]}]`)
	h.put("file:///bad/pipeline.toml", "[[pipelines]]\ntype = \"Holograms\"\n")
	h.put("file:///good/a.script_bundle", "a")

	out, err := pipelines.ProcessPipelines(context.Background(), h.batch())
	if err != nil {
		t.Fatalf("ProcessPipelines: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(out))
	}
	errs := h.recorder.Errors()
	var manifestErr *pipelines.ManifestError
	if len(errs) != 1 || !errors.As(errs[0], &manifestErr) {
		t.Fatalf("expected one manifest error, got %v", errs)
	}
}

func TestProcessPipelinesUnsupportedKindIsFatal(t *testing.T) {
	for _, kind := range []pipelines.Kind{pipelines.Models, pipelines.Materials, pipelines.Audio} {
		h := newHarness()
		h.put("file:///p/pipeline.json", fmt.Sprintf(`[{"type": "ScriptBundles"}, {"type": %q}]`, kind))
		h.put("file:///p/a.script_bundle", "a")

		out, err := pipelines.ProcessPipelines(context.Background(), h.batch())
		if !errors.Is(err, pipelines.ErrUnsupportedKind) {
			t.Fatalf("%s: expected ErrUnsupportedKind, got %v", kind, err)
		}
		if !pipelines.IsFatal(err) {
			t.Fatalf("%s: expected fatal error", kind)
		}
		if out != nil {
			t.Fatalf("%s: fatal batch must return no artifacts, got %d", kind, len(out))
		}
		if !strings.Contains(err.Error(), string(kind)) {
			t.Fatalf("%s: error should name the kind: %v", kind, err)
		}
	}
}

func TestProcessPipelinesSourcesRestrictMatches(t *testing.T) {
	h := newHarness()
	h.put("file:///p/pipeline.toml", "[[pipelines]]\ntype = \"ScriptBundles\"\nsources = [\"gameplay/**\"]\n")
	h.put("file:///p/gameplay/deep/nested/a.script_bundle", "a")
	h.put("file:///p/gameplay/b.script_bundle", "b")
	h.put("file:///p/ui/c.script_bundle", "c")

	out, err := pipelines.ProcessPipelines(context.Background(), h.batch())
	if err != nil {
		t.Fatalf("ProcessPipelines: %v", err)
	}
	if got := names(out); !slices.Equal(got, []string{"a.script_bundle", "b.script_bundle"}) {
		t.Fatalf("unexpected artifacts %v", got)
	}
}

func TestProcessPipelinesInputFilter(t *testing.T) {
	h := newHarness()
	h.put("file:///p/pipeline.json", `[{"type": "ScriptBundles"}]`)
	h.put("file:///p/hud/a.script_bundle", "a")
	h.put("file:///p/world/b.script_bundle", "b")

	batch := h.batch()
	batch.InputFileFilter = "/hud/"

	out, err := pipelines.ProcessPipelines(context.Background(), batch)
	if err != nil {
		t.Fatalf("ProcessPipelines: %v", err)
	}
	if got := names(out); !slices.Equal(got, []string{"a.script_bundle"}) {
		t.Fatalf("unexpected artifacts %v", got)
	}
}

func TestProcessPipelinesWithoutManifests(t *testing.T) {
	h := newHarness()
	h.put("file:///p/a.script_bundle", "a")

	out, err := pipelines.ProcessPipelines(context.Background(), h.batch())
	if err != nil {
		t.Fatalf("ProcessPipelines: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no artifacts without manifests, got %d", len(out))
	}
}

func TestProcessPipelinesCancelled(t *testing.T) {
	h := newHarness()
	h.put("file:///p/pipeline.json", `[{"type": "ScriptBundles"}]`)
	h.put("file:///p/a.script_bundle", "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := pipelines.ProcessPipelines(ctx, h.batch())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if out != nil {
		t.Fatalf("expected no artifacts, got %d", len(out))
	}
}

func TestProcessPipelinesDispatchesSequentially(t *testing.T) {
	const manifests, bundlesPerManifest = 3, 4
	h := newHarness()
	h.assets.Delay = 5 * time.Millisecond
	for m := range manifests {
		h.put(fmt.Sprintf("file:///project/m%d/pipeline.json", m), `[{"type": "ScriptBundles", "sources": ["*.script_bundle"]}]`)
		for b := range bundlesPerManifest {
			h.put(fmt.Sprintf("file:///project/m%d/b%d.script_bundle", m, b), "bundle")
		}
	}

	out, err := pipelines.ProcessPipelines(context.Background(), h.batch())
	if err != nil {
		t.Fatalf("ProcessPipelines: %v", err)
	}
	if len(out) != manifests*bundlesPerManifest {
		t.Fatalf("expected %d artifacts, got %d", manifests*bundlesPerManifest, len(out))
	}
	// Manifest fetches may overlap the first dispatch; file fan-outs of
	// different pipelines must not.
	if peak := h.assets.Peak(); peak > bundlesPerManifest+manifests {
		t.Fatalf("pipelines overlapped: peak of %d concurrent downloads", peak)
	}
}
