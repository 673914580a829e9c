package build

import (
	"cmp"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"forge/internal/fileutil"
	"forge/internal/history"
	"forge/internal/pipelines"
)

// IndexFileName is the artifact index written into the output directory.
const IndexFileName = "assets.json"

// Index is the on-disk description of one build's artifacts.
type Index struct {
	RunID       string               `json:"run_id"`
	GeneratedAt time.Time            `json:"generated_at"`
	Assets      []pipelines.OutAsset `json:"assets"`
}

// WriteIndex stores the artifacts in a stable order at <outputDir>/assets.json.
func WriteIndex(outputDir, runID string, assets []pipelines.OutAsset) (string, error) {
	sorted := slices.Clone(assets)
	slices.SortStableFunc(sorted, compareAssets)
	if sorted == nil {
		sorted = []pipelines.OutAsset{}
	}

	data, err := json.MarshalIndent(Index{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Assets:      sorted,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode index: %w", err)
	}
	path := filepath.Join(outputDir, IndexFileName)
	if err := fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write index: %w", err)
	}
	return path, nil
}

func compareAssets(a, b pipelines.OutAsset) int {
	return cmp.Or(
		cmp.Compare(sourceString(a), sourceString(b)),
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(subAsset(a), subAsset(b)),
	)
}

func sourceString(asset pipelines.OutAsset) string {
	if asset.Source == nil {
		return ""
	}
	return asset.Source.String()
}

func subAsset(asset pipelines.OutAsset) string {
	if asset.SubAsset == nil {
		return ""
	}
	return *asset.SubAsset
}

func historyArtifacts(assets []pipelines.OutAsset) []history.Artifact {
	out := make([]history.Artifact, 0, len(assets))
	for _, asset := range assets {
		artifact := history.Artifact{
			Name:   asset.Name,
			Type:   string(asset.Type),
			Source: sourceString(asset),
			Tags:   asset.Tags,
		}
		if asset.SubAsset != nil {
			artifact.Name = asset.Name + "#" + *asset.SubAsset
		}
		if asset.Content.Inline != nil {
			artifact.Content = asset.Content.Inline.String()
		}
		for _, set := range asset.Categories {
			artifact.Categories = append(artifact.Categories, set.Sorted())
		}
		out = append(out, artifact)
	}
	return out
}
