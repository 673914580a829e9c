package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"forge/internal/asseturl"
	"forge/internal/logging"
	"forge/internal/services"
)

const defaultHTTPTimeout = 60 * time.Second

// Downloader fetches the raw bytes stored at a location.
type Downloader interface {
	DownloadBytes(ctx context.Context, location asseturl.URL) ([]byte, error)
}

// Client downloads assets from the local filesystem and over HTTP.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for remote locations.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout sets the per-request timeout for remote locations.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

// WithLogger routes download diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "assets")
	}
}

// NewClient builds a Client with sane defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:   &http.Client{Timeout: defaultHTTPTimeout},
		logger: logging.NewComponentLogger(nil, "assets"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DownloadBytes returns the full contents stored at location.
func (c *Client) DownloadBytes(ctx context.Context, location asseturl.URL) ([]byte, error) {
	if location.IsZero() {
		return nil, services.Wrap(services.ErrValidation, "assets", "download", "empty location", nil)
	}
	start := time.Now()
	var (
		data []byte
		err  error
	)
	if local, ok := location.LocalPath(); ok {
		data, err = readLocal(ctx, local)
	} else {
		data, err = c.fetchRemote(ctx, location)
	}
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "asset downloaded",
		logging.String("location", location.String()),
		logging.Int("bytes", len(data)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return data, nil
}

func readLocal(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "assets", "read", path, err)
		}
		return nil, services.Wrap(services.ErrTransient, "assets", "read", path, err)
	}
	return data, nil
}

func (c *Client) fetchRemote(ctx context.Context, location asseturl.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location.String(), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "assets", "build request", location.String(), err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternal, "assets", "http get", location.String(), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, services.Wrap(services.ErrNotFound, "assets", "http get", fmt.Sprintf("%s (status %d)", location, resp.StatusCode), nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, services.Wrap(services.ErrExternal, "assets", "http get", fmt.Sprintf("%s (status %d)", location, resp.StatusCode), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "assets", "read body", location.String(), err)
	}
	return data, nil
}
