package pipelines

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"forge/internal/logging"
	"forge/internal/services"
)

// ProcessPipelines runs every pipeline of every discovered manifest and
// returns all produced artifacts. Dispatches run strictly one after another,
// each to completion, in the order manifests arrive and declarations appear.
// A fatal dispatch error stops discovery and is returned with no artifacts.
func ProcessPipelines(ctx context.Context, batch *ProcessContext) ([]OutAsset, error) {
	discoverCtx, cancel := context.WithCancel(ctx)
	manifests := DiscoverManifests(discoverCtx, batch)
	// Discovery goroutines must finish before the batch's reporter is released.
	defer func() {
		cancel()
		for range manifests {
		}
	}()

	var all []OutAsset
	for manifest := range manifests {
		for i := range manifest.Pipelines {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			pipeline := &manifest.Pipelines[i]
			produced, err := dispatch(ctx, batch, manifest, pipeline)
			if err != nil {
				return nil, err
			}
			all = append(all, produced...)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return all, nil
}

func dispatch(ctx context.Context, batch *ProcessContext, manifest Manifest, pipeline *Pipeline) ([]OutAsset, error) {
	ctx = services.WithPipeline(ctx, pipeline.Kind.String())
	ctx = services.WithManifest(ctx, manifest.URL.String())
	ctx = services.WithRequestID(ctx, uuid.NewString())

	batch.status(ctx, fmt.Sprintf("%s: processing %s", pipeline.Kind.Label(), manifest.URL))
	produced, err := pipeline.Process(ctx, batch, manifest.URL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		logging.ErrorWithContext(logging.WithContext(ctx, batch.logger()), "pipeline dispatch failed", "pipeline_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorKind, services.FailureKind(err)),
			logging.String(logging.FieldErrorHint, "check the pipeline type declared in the manifest"),
		)
		return nil, fmt.Errorf("%s: %w", manifest.URL, err)
	}
	batch.status(ctx, fmt.Sprintf("%s: %d assets from %s", pipeline.Kind.Label(), len(produced), manifest.URL))
	return produced, nil
}
