package pipelines

import (
	"context"

	"forge/internal/asseturl"
)

const scriptBundleExtension = "script_bundle"

func processScriptBundles(ctx context.Context, run *PipelineContext) ([]OutAsset, error) {
	return ProcessFiles(ctx, run, isScriptBundle, copyScriptBundle)
}

func isScriptBundle(file asseturl.URL) bool {
	return file.HasExtension(scriptBundleExtension)
}

// copyScriptBundle passes the bundle bytes through unchanged.
func copyScriptBundle(ctx context.Context, run *PipelineContext, file asseturl.URL) ([]OutAsset, error) {
	bundle, err := run.DownloadBytes(ctx, file)
	if err != nil {
		return nil, err
	}
	logicalPath := asseturl.ReplaceExtension(run.RelativePath(file), scriptBundleExtension)
	location, err := run.WriteFile(ctx, logicalPath, bundle)
	if err != nil {
		return nil, err
	}
	source := file
	return []OutAsset{{
		Type:       AssetTypeScriptBundle,
		Name:       file.FileName(),
		Tags:       []string{},
		Categories: []CategorySet{},
		Content:    InlineContent(location),
		Source:     &source,
	}}, nil
}
