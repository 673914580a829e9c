package pipelines

import (
	"context"
	"fmt"
	"sync"

	"forge/internal/asseturl"
)

// Transform produces the artifacts for one matched file.
type Transform func(ctx context.Context, run *PipelineContext, file asseturl.URL) ([]OutAsset, error)

// ProcessFiles applies transform to every input file accepted by match and by
// the pipeline's filters. Transforms run concurrently; results are collected
// in completion order. A failing transform is reported as a *FileError and
// contributes nothing. The only error returned is context cancellation.
func ProcessFiles(ctx context.Context, run *PipelineContext, match func(asseturl.URL) bool, transform Transform) ([]OutAsset, error) {
	var matched []asseturl.URL
	for _, file := range run.Process.Files {
		if match(file) && run.Includes(file) {
			matched = append(matched, file)
		}
	}
	if len(matched) == 0 {
		return nil, ctx.Err()
	}

	var slots chan struct{}
	if limit := run.Process.MaxConcurrency; limit > 0 {
		slots = make(chan struct{}, limit)
	}

	var (
		mu  sync.Mutex
		out []OutAsset
		wg  sync.WaitGroup
	)
	for _, file := range matched {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if slots != nil {
				select {
				case slots <- struct{}{}:
				case <-ctx.Done():
					return
				}
				defer func() { <-slots }()
			}

			produced, err := runTransform(ctx, run, file, transform)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				var kind Kind
				if run.Pipeline != nil {
					kind = run.Pipeline.Kind
				}
				run.Process.reportError(ctx, &FileError{
					Kind:     kind,
					Manifest: run.Root,
					File:     file,
					Err:      err,
				})
				return
			}
			mu.Lock()
			out = append(out, produced...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func runTransform(ctx context.Context, run *PipelineContext, file asseturl.URL, transform Transform) (produced []OutAsset, err error) {
	defer func() {
		if r := recover(); r != nil {
			produced = nil
			err = fmt.Errorf("transform panicked: %v", r)
		}
	}()
	return transform(ctx, run, file)
}
