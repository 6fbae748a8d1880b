package buildopts

// LazyStyleEntry declares a lazily loaded style bundle. Input is either a
// single module specifier or a list of them.
type LazyStyleEntry struct {
	BundleName string `json:"bundleName,omitempty" mapstructure:"bundleName"`
	Input      any    `json:"input" mapstructure:"input"`
}

// ResolveBundleName returns the entry's bundle name, or defaultBundle when it
// has none.
func (e LazyStyleEntry) ResolveBundleName(defaultBundle string) string {
	if e.BundleName != "" {
		return e.BundleName
	}
	return defaultBundle
}

// NormalizeStyleEntry resolves entry into its bundle name and the module
// specifiers it contributes. A single string input becomes a one element
// list; lists are returned as they are. Paths are not checked.
func NormalizeStyleEntry(entry LazyStyleEntry, defaultBundle string) (string, []string) {
	return entry.ResolveBundleName(defaultBundle), styleInputs(entry.Input)
}

func styleInputs(input any) []string {
	switch typed := input.(type) {
	case string:
		return []string{typed}
	case []string:
		return typed
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// EntryPoint is one extra bundle for the build entry table.
type EntryPoint struct {
	Bundle string   `json:"bundleName"`
	Inputs []string `json:"input"`
	Inject bool     `json:"inject"`
}

// ExtraEntryPoints groups the inputs of entries per bundle, keeping bundles
// in the order they first appear. Lazy styles are never injected.
func ExtraEntryPoints(entries []LazyStyleEntry, defaultBundle string) []EntryPoint {
	if len(entries) == 0 {
		return nil
	}
	index := map[string]int{}
	var out []EntryPoint
	for _, entry := range entries {
		bundle, inputs := NormalizeStyleEntry(entry, defaultBundle)
		i, ok := index[bundle]
		if !ok {
			i = len(out)
			index[bundle] = i
			out = append(out, EntryPoint{Bundle: bundle})
		}
		out[i].Inputs = append(out[i].Inputs, inputs...)
	}
	return out
}
