package pipelines

import "slices"

// MergeMetadata folds a pipeline's declared metadata into its artifacts. Tags
// are appended, duplicates kept. Each category slot the artifact already has is
// unioned with the declaration's slot at the same index; declared slots beyond
// the artifact's own count are ignored.
func MergeMetadata(assets []OutAsset, pipeline *Pipeline) {
	if pipeline == nil {
		return
	}
	for i := range assets {
		asset := &assets[i]
		asset.Tags = append(slices.Clip(asset.Tags), pipeline.Tags...)
		for slot := range asset.Categories {
			if slot >= len(pipeline.Categories) {
				break
			}
			if asset.Categories[slot] == nil {
				asset.Categories[slot] = CategorySet{}
			}
			asset.Categories[slot].Add(pipeline.Categories[slot]...)
		}
	}
}
