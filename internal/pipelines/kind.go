package pipelines

import (
	"errors"
	"fmt"
	"strings"

	"forge/internal/textutil"
)

// Kind identifies the processing strategy of a pipeline declaration.
type Kind string

const (
	// ScriptBundles copies *.script_bundle files through the content sink.
	ScriptBundles Kind = "ScriptBundles"
	// Models imports 3D model files. No strategy is wired yet.
	Models Kind = "Models"
	// Materials bakes material definitions. No strategy is wired yet.
	Materials Kind = "Materials"
	// Audio transcodes audio clips. No strategy is wired yet.
	Audio Kind = "Audio"
)

var allKinds = []Kind{ScriptBundles, Models, Materials, Audio}

var kindKeyReplacer = strings.NewReplacer("_", "", "-", "", " ", "")

// Kinds lists every declared pipeline kind, implemented or not.
func Kinds() []Kind {
	return append([]Kind(nil), allKinds...)
}

// ParseKind resolves a manifest type name. Matching ignores case and the
// separators '_', '-' and ' ', so "script_bundles" names ScriptBundles.
func ParseKind(value string) (Kind, error) {
	key := kindKey(value)
	if key == "" {
		return "", errors.New("pipeline type is required")
	}
	for _, kind := range allKinds {
		if kindKey(string(kind)) == key {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown pipeline type %q", value)
}

func kindKey(value string) string {
	return strings.ToLower(kindKeyReplacer.Replace(strings.TrimSpace(value)))
}

func (k Kind) String() string {
	return string(k)
}

// Label renders the kind for status lines, e.g. "Script Bundles".
func (k Kind) Label() string {
	return textutil.Title(string(k))
}

// Supported reports whether Process has a strategy for the kind.
func (k Kind) Supported() bool {
	return k == ScriptBundles
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so both JSON and TOML
// manifests reject unknown type names while decoding.
func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}
