package asseturl

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// URL is an absolute asset location. The zero value is not a valid location.
type URL struct {
	u url.URL
}

// Parse resolves raw into an absolute URL. Absolute filesystem paths are
// accepted and converted to file URLs.
func Parse(raw string) (URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return URL{}, errors.New("asset url: empty location")
	}
	if filepath.IsAbs(raw) && !strings.Contains(raw, "://") {
		return FromPath(raw)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return URL{}, fmt.Errorf("asset url: parse %q: %w", raw, err)
	}
	switch parsed.Scheme {
	case "file":
		if parsed.Path == "" || !strings.HasPrefix(parsed.Path, "/") {
			return URL{}, fmt.Errorf("asset url: file location %q must be absolute", raw)
		}
	case "http", "https":
		if parsed.Host == "" {
			return URL{}, fmt.Errorf("asset url: %q has no host", raw)
		}
		if parsed.Path == "" {
			parsed.Path = "/"
		}
	case "":
		return URL{}, fmt.Errorf("asset url: %q is not absolute", raw)
	default:
		return URL{}, fmt.Errorf("asset url: unsupported scheme %q", parsed.Scheme)
	}
	parsed.Fragment = ""
	return URL{u: *parsed}, nil
}

// MustParse is Parse for fixed locations in tests and defaults.
func MustParse(raw string) URL {
	u, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

// FromPath converts a filesystem path into a file URL. Relative paths are made
// absolute against the working directory.
func FromPath(p string) (URL, error) {
	if strings.TrimSpace(p) == "" {
		return URL{}, errors.New("asset url: empty path")
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return URL{}, fmt.Errorf("asset url: resolve %q: %w", p, err)
	}
	return URL{u: url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}}, nil
}

// IsZero reports whether u is the zero value.
func (u URL) IsZero() bool {
	return u.u.Scheme == ""
}

// String renders the location.
func (u URL) String() string {
	if u.IsZero() {
		return ""
	}
	return u.u.String()
}

// Scheme returns the URL scheme (file, http, https).
func (u URL) Scheme() string {
	return u.u.Scheme
}

// IsLocal reports whether the location is a file URL.
func (u URL) IsLocal() bool {
	return u.u.Scheme == "file"
}

// Path returns the slash-separated path component.
func (u URL) Path() string {
	return u.u.Path
}

// LocalPath returns the filesystem path for file URLs.
func (u URL) LocalPath() (string, bool) {
	if !u.IsLocal() {
		return "", false
	}
	return filepath.FromSlash(u.u.Path), true
}

// FileName returns the last path segment.
func (u URL) FileName() string {
	p := strings.TrimSuffix(u.u.Path, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// Extension returns the file extension without its leading dot. Dotfiles such
// as ".env" have no extension.
func (u URL) Extension() (string, bool) {
	name := u.FileName()
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return "", false
	}
	return name[idx+1:], true
}

// HasExtension reports whether the file extension equals ext exactly.
func (u URL) HasExtension(ext string) bool {
	got, ok := u.Extension()
	return ok && got == strings.TrimPrefix(ext, ".")
}

// Dir returns the directory containing u, with a trailing slash.
func (u URL) Dir() URL {
	clone := u.u
	dir := path.Dir(strings.TrimSuffix(clone.Path, "/"))
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	clone.Path = dir
	clone.RawQuery = ""
	return URL{u: clone}
}

// Join resolves a slash-separated relative path against the directory of u.
func (u URL) Join(rel string) (URL, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return URL{}, errors.New("asset url: empty relative path")
	}
	if strings.HasPrefix(rel, "/") {
		return URL{}, fmt.Errorf("asset url: %q is not relative", rel)
	}
	clone := u.Dir().u
	clone.Path = path.Join(clone.Path, rel)
	return URL{u: clone}, nil
}

// RelativePath returns the path of file relative to the directory holding u.
// Files outside that directory (or on another host) fall back to their full
// path without the leading slash so the result never climbs upwards.
func (u URL) RelativePath(file URL) string {
	filePath := file.Path()
	if u.u.Scheme != file.u.Scheme || u.u.Host != file.u.Host {
		return strings.TrimPrefix(filePath, "/")
	}
	dir := u.Dir().Path()
	if strings.HasPrefix(filePath, dir) {
		return strings.TrimPrefix(filePath, dir)
	}
	return strings.TrimPrefix(filePath, "/")
}

// MarshalText implements encoding.TextMarshaler.
func (u URL) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *URL) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// ReplaceExtension swaps the extension of a slash-separated path for ext. A
// path without an extension gains one.
func ReplaceExtension(p, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	base := path.Base(p)
	if idx := strings.LastIndexByte(base, '.'); idx > 0 {
		p = strings.TrimSuffix(p, base[idx:])
	}
	if ext == "" {
		return p
	}
	return p + "." + ext
}
