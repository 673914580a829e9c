package pipelines

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"forge/internal/asseturl"
)

// Pipeline is one declaration from a manifest.
type Pipeline struct {
	Kind Kind `json:"type" toml:"type"`
	// Sources are doublestar patterns matched against paths relative to the
	// manifest directory. Empty leaves matching to the strategy alone.
	Sources    []string   `json:"sources,omitempty" toml:"sources,omitempty"`
	Tags       []string   `json:"tags,omitempty" toml:"tags,omitempty"`
	Categories [][]string `json:"categories,omitempty" toml:"categories,omitempty"`
}

func (p *Pipeline) validate() error {
	if p.Kind == "" {
		return errors.New("pipeline type is required")
	}
	for _, pattern := range p.Sources {
		if strings.TrimSpace(pattern) == "" || !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid source pattern %q", pattern)
		}
	}
	return nil
}

// Process dispatches the pipeline to its strategy and merges the declared tags
// and categories into every artifact. A kind without a strategy returns an
// error wrapping ErrUnsupportedKind and no artifacts; a value outside the
// declared kinds returns ErrUndeclaredKind.
func (p *Pipeline) Process(ctx context.Context, batch *ProcessContext, manifest asseturl.URL) ([]OutAsset, error) {
	run := newPipelineContext(batch, manifest, p)

	var (
		out []OutAsset
		err error
	)
	switch p.Kind {
	case ScriptBundles:
		out, err = processScriptBundles(ctx, run)
	case Models, Materials, Audio:
		err = unsupportedKind(p.Kind)
	default:
		err = fmt.Errorf("%w: %q", ErrUndeclaredKind, string(p.Kind))
	}
	if err != nil {
		return nil, err
	}

	MergeMetadata(out, p)
	return out, nil
}
