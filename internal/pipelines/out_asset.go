package pipelines

import (
	"encoding/json"
	"slices"

	"forge/internal/asseturl"
)

// AssetType is the semantic type of a produced artifact.
type AssetType string

const (
	AssetTypeScriptBundle AssetType = "ScriptBundle"
	AssetTypeModel        AssetType = "Model"
	AssetTypeMaterial     AssetType = "Material"
	AssetTypeAudio        AssetType = "Audio"
)

// CategorySet is an unordered set of category labels.
type CategorySet map[string]struct{}

// NewCategorySet builds a set holding labels.
func NewCategorySet(labels ...string) CategorySet {
	set := make(CategorySet, len(labels))
	set.Add(labels...)
	return set
}

// Add inserts labels into the set.
func (s CategorySet) Add(labels ...string) {
	for _, label := range labels {
		s[label] = struct{}{}
	}
}

// Has reports whether label is a member.
func (s CategorySet) Has(label string) bool {
	_, ok := s[label]
	return ok
}

// Sorted returns the members in lexical order. Set order carries no meaning;
// sorting only keeps serialized output stable.
func (s CategorySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for label := range s {
		out = append(out, label)
	}
	slices.Sort(out)
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s CategorySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of labels, dropping duplicates.
func (s *CategorySet) UnmarshalJSON(data []byte) error {
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return err
	}
	*s = NewCategorySet(labels...)
	return nil
}

// Preview is either none (Image nil) or an image at a location.
type Preview struct {
	Image *asseturl.URL `json:"image,omitempty"`
}

// ImagePreview returns a preview pointing at an image.
func ImagePreview(location asseturl.URL) Preview {
	return Preview{Image: &location}
}

// IsNone reports whether the artifact has no preview.
func (p Preview) IsNone() bool {
	return p.Image == nil
}

// Content is either inline bytes stored at a location or a collection of
// other artifact identifiers.
type Content struct {
	Inline     *asseturl.URL `json:"inline,omitempty"`
	Collection []string      `json:"collection,omitempty"`
}

// InlineContent returns content stored at location.
func InlineContent(location asseturl.URL) Content {
	return Content{Inline: &location}
}

// CollectionContent returns content referencing other artifacts.
func CollectionContent(ids ...string) Content {
	return Content{Collection: append([]string{}, ids...)}
}

// OutAsset is one artifact produced by a pipeline.
type OutAsset struct {
	SubAsset   *string       `json:"sub_asset,omitempty"`
	Type       AssetType     `json:"type"`
	Hidden     bool          `json:"hidden"`
	Name       string        `json:"name"`
	Tags       []string      `json:"tags"`
	Categories []CategorySet `json:"categories"`
	Preview    Preview       `json:"preview"`
	Content    Content       `json:"content"`
	Source     *asseturl.URL `json:"source,omitempty"`
}
