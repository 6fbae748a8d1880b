package buildopts

import (
	"errors"

	"github.com/goliatone/go-buildopts/internal/hydrate"
)

// ErrNilResolution is returned when decoding a nil Resolution.
var ErrNilResolution = errors.New("buildopts: resolution is nil")

// DefaultStylesBundle is the bundle lazy styles without a bundle name go to.
const DefaultStylesBundle = "styles"

// BuilderOptions is the typed view of the options the builder understands.
// Everything else is kept in Extra.
type BuilderOptions struct {
	BrowserTarget   string            `json:"browserTarget,omitempty" mapstructure:"browserTarget"`
	Assets          []AssetEntry      `json:"assets,omitempty" mapstructure:"assets"`
	LazyStyles      []LazyStyleEntry  `json:"lazyStyles,omitempty" mapstructure:"lazyStyles"`
	CustomConfig    string            `json:"customConfig,omitempty" mapstructure:"customConfig"`
	MergeStrategies map[string]string `json:"mergeStrategies,omitempty" mapstructure:"mergeStrategies"`
	ReplacePlugins  bool              `json:"replacePlugins,omitempty" mapstructure:"replacePlugins"`
	Extra           map[string]any    `json:"-" mapstructure:",remain"`
}

// EntryPoints returns the extra entry points declared by LazyStyles.
func (o BuilderOptions) EntryPoints() []EntryPoint {
	return ExtraEntryPoints(o.LazyStyles, DefaultStylesBundle)
}

// BuilderOptions decodes the resolution into BuilderOptions. Asset paths
// that were never expanded against a target decode as entries with an
// empty output.
func (r *Resolution) BuilderOptions() (BuilderOptions, error) {
	if r == nil {
		return BuilderOptions{}, ErrNilResolution
	}
	decoder := hydrate.NewDecoder[BuilderOptions](
		hydrate.WithWeaklyTypedInput[BuilderOptions](),
		hydrate.WithPreHook[BuilderOptions](assetPathsPreHook),
	)
	return decoder.Decode(r.hydrateContext(), r.Options)
}

func assetPathsPreHook(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	if assets, ok := payload[AssetsKey]; ok && assets != nil {
		payload[AssetsKey] = expandAssets(assets, "")
	}
	return payload, nil
}
