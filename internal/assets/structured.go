package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"forge/internal/asseturl"
	"forge/internal/services"
)

// DownloadJSON fetches location and decodes it as JSON into T.
func DownloadJSON[T any](ctx context.Context, d Downloader, location asseturl.URL) (T, error) {
	var out T
	data, err := d.DownloadBytes(ctx, location)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, services.Wrap(services.ErrValidation, "assets", "decode json", location.String(), err)
	}
	return out, nil
}

// DownloadTOML fetches location and decodes it as TOML into T.
func DownloadTOML[T any](ctx context.Context, d Downloader, location asseturl.URL) (T, error) {
	var out T
	data, err := d.DownloadBytes(ctx, location)
	if err != nil {
		return out, err
	}
	if err := toml.Unmarshal(data, &out); err != nil {
		return out, services.Wrap(services.ErrValidation, "assets", "decode toml", describeTOMLError(location, err), err)
	}
	return out, nil
}

func describeTOMLError(location asseturl.URL, err error) string {
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Sprintf("%s (line %d, column %d)", location, row, col)
	}
	return location.String()
}
