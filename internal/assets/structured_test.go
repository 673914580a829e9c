package assets_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"forge/internal/assets"
	"forge/internal/asseturl"
	"forge/internal/services"
)

type memoryDownloader map[string][]byte

func (m memoryDownloader) DownloadBytes(_ context.Context, location asseturl.URL) ([]byte, error) {
	data, ok := m[location.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", services.ErrNotFound, location)
	}
	return data, nil
}

type document struct {
	Name  string   `json:"name" toml:"name"`
	Items []string `json:"items" toml:"items"`
}

func TestDownloadJSONAndTOML(t *testing.T) {
	d := memoryDownloader{
		"file:///doc.json": []byte(`{"name":"a","items":["x","y"]}`),
		"file:///doc.toml": []byte("name = \"b\"\nitems = [\"z\"]\n"),
	}
	ctx := context.Background()

	fromJSON, err := assets.DownloadJSON[document](ctx, d, asseturl.MustParse("file:///doc.json"))
	if err != nil {
		t.Fatalf("DownloadJSON: %v", err)
	}
	if fromJSON.Name != "a" || len(fromJSON.Items) != 2 {
		t.Fatalf("unexpected json document %+v", fromJSON)
	}

	fromTOML, err := assets.DownloadTOML[document](ctx, d, asseturl.MustParse("file:///doc.toml"))
	if err != nil {
		t.Fatalf("DownloadTOML: %v", err)
	}
	if fromTOML.Name != "b" || len(fromTOML.Items) != 1 || fromTOML.Items[0] != "z" {
		t.Fatalf("unexpected toml document %+v", fromTOML)
	}
}

func TestDownloadStructuredDecodeErrorsAreValidation(t *testing.T) {
	d := memoryDownloader{
		"file:///bad.json": []byte(`{"name":`),
		"file:///bad.toml": []byte("name = = \"x\""),
	}
	ctx := context.Background()
	if _, err := assets.DownloadJSON[document](ctx, d, asseturl.MustParse("file:///bad.json")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for json, got %v", err)
	}
	if _, err := assets.DownloadTOML[document](ctx, d, asseturl.MustParse("file:///bad.toml")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for toml, got %v", err)
	}
	if _, err := assets.DownloadTOML[document](ctx, d, asseturl.MustParse("file:///absent.toml")); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected download error to pass through, got %v", err)
	}
}
