package assets_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"forge/internal/assets"
	"forge/internal/asseturl"
	"forge/internal/services"
)

func TestDownloadBytesLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.script_bundle")
	if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	location, err := asseturl.FromPath(path)
	if err != nil {
		t.Fatalf("FromPath: %v", err)
	}

	data, err := assets.NewClient().DownloadBytes(context.Background(), location)
	if err != nil {
		t.Fatalf("DownloadBytes: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected payload %q", data)
	}
}

func TestDownloadBytesMissingLocalFileIsNotFound(t *testing.T) {
	location, err := asseturl.FromPath(filepath.Join(t.TempDir(), "missing.bin"))
	if err != nil {
		t.Fatalf("FromPath: %v", err)
	}
	_, err = assets.NewClient().DownloadBytes(context.Background(), location)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDownloadBytesHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.bin":
			_, _ = w.Write([]byte("remote"))
		case "/broken.bin":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := assets.NewClient(assets.WithHTTPClient(srv.Client()))
	ctx := context.Background()

	data, err := client.DownloadBytes(ctx, asseturl.MustParse(srv.URL+"/ok.bin"))
	if err != nil {
		t.Fatalf("DownloadBytes ok: %v", err)
	}
	if string(data) != "remote" {
		t.Fatalf("unexpected payload %q", data)
	}

	if _, err := client.DownloadBytes(ctx, asseturl.MustParse(srv.URL+"/missing.bin")); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := client.DownloadBytes(ctx, asseturl.MustParse(srv.URL+"/broken.bin")); !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected external error, got %v", err)
	}
}

func TestDownloadBytesRejectsZeroLocation(t *testing.T) {
	if _, err := assets.NewClient().DownloadBytes(context.Background(), asseturl.URL{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
