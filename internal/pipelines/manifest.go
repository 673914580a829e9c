package pipelines

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"forge/internal/assets"
	"forge/internal/asseturl"
	"forge/internal/services"
)

const (
	TOMLManifestName = "pipeline.toml"
	JSONManifestName = "pipeline.json"
)

// Manifest is a decoded manifest file and its declarations in file order.
type Manifest struct {
	URL       asseturl.URL
	Pipelines []Pipeline
}

// IsManifest reports whether location names a manifest by suffix.
func IsManifest(location asseturl.URL) bool {
	p := location.Path()
	return strings.HasSuffix(p, TOMLManifestName) || strings.HasSuffix(p, JSONManifestName)
}

// manifestDocument accepts `[[pipelines]]` tables in TOML and either a bare
// array or {"pipelines": [...]} in JSON.
type manifestDocument struct {
	Pipelines []Pipeline `json:"pipelines" toml:"pipelines"`
}

func (d *manifestDocument) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &d.Pipelines)
	}
	type plain manifestDocument
	var doc plain
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return err
	}
	*d = manifestDocument(doc)
	return nil
}

// LoadManifest fetches and decodes one manifest. Failures are returned as
// *ManifestError.
func LoadManifest(ctx context.Context, downloader assets.Downloader, location asseturl.URL) (Manifest, error) {
	var (
		doc manifestDocument
		err error
	)
	switch p := location.Path(); {
	case strings.HasSuffix(p, TOMLManifestName):
		doc, err = assets.DownloadTOML[manifestDocument](ctx, downloader, location)
	case strings.HasSuffix(p, JSONManifestName):
		doc, err = assets.DownloadJSON[manifestDocument](ctx, downloader, location)
	default:
		err = services.Wrap(services.ErrValidation, "pipelines", "load manifest", "not a manifest file", nil)
	}
	if err != nil {
		return Manifest{}, &ManifestError{Manifest: location, Err: err}
	}

	for i := range doc.Pipelines {
		if err := doc.Pipelines[i].validate(); err != nil {
			return Manifest{}, &ManifestError{
				Manifest: location,
				Err:      services.Wrap(services.ErrValidation, "pipelines", "load manifest", fmt.Sprintf("pipeline %d", i), err),
			}
		}
	}
	return Manifest{URL: location, Pipelines: doc.Pipelines}, nil
}

// DiscoverManifests loads every manifest among the batch files concurrently and
// streams them in completion order. Manifests that fail to load are reported
// and skipped. The channel closes once every candidate is handled or ctx is
// done.
func DiscoverManifests(ctx context.Context, batch *ProcessContext) <-chan Manifest {
	out := make(chan Manifest)
	var wg sync.WaitGroup
	for _, file := range batch.Files {
		if !IsManifest(file) {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			manifest, err := LoadManifest(ctx, batch.Assets, file)
			if err != nil {
				if ctx.Err() == nil {
					batch.reportError(services.WithManifest(ctx, file.String()), err)
				}
				return
			}
			select {
			case out <- manifest:
			case <-ctx.Done():
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
