package build

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"forge/internal/asseturl"
	"forge/internal/services"
)

// CollectInputs walks root and returns every regular file as a file URL in
// lexical order. Directories named in ignoreDirs are skipped at any depth.
func CollectInputs(ctx context.Context, root string, ignoreDirs []string) ([]asseturl.URL, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve input dir: %w", err)
	}

	var files []asseturl.URL
	err = filepath.WalkDir(abs, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			if path != abs && slices.Contains(ignoreDirs, entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		location, err := asseturl.FromPath(path)
		if err != nil {
			return err
		}
		files = append(files, location)
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "build", "collect inputs", abs, err)
	}
	return files, nil
}

// ReadFileList reads one input location per line from path. Blank lines and
// lines starting with '#' are ignored. Relative filesystem paths resolve
// against the directory holding the list.
func ReadFileList(path string) ([]asseturl.URL, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "build", "read file list", path, err)
	}
	defer file.Close()
	return parseFileList(file, filepath.Dir(path))
}

func parseFileList(r io.Reader, baseDir string) ([]asseturl.URL, error) {
	var files []asseturl.URL
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		entry := strings.TrimSpace(scanner.Text())
		if entry == "" || strings.HasPrefix(entry, "#") {
			continue
		}
		if !strings.Contains(entry, "://") && !filepath.IsAbs(entry) {
			entry = filepath.Join(baseDir, entry)
		}
		location, err := asseturl.Parse(entry)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "build", "read file list", fmt.Sprintf("line %d", line), err)
		}
		files = append(files, location)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file list: %w", err)
	}
	return files, nil
}
