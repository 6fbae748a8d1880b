package buildopts

import (
	"sort"
	"strings"

	"github.com/goliatone/go-buildopts/layering"
)

// Fragment is the option set produced by one source. A nil value marks an
// absent option: it never overrides anything during a merge.
type Fragment map[string]any

// Clone returns a deep copy of f detached from the original.
func (f Fragment) Clone() Fragment {
	if f == nil {
		return Fragment{}
	}
	return Fragment(layering.Clone(map[string]any(f)))
}

// Keys returns the option names in sorted order.
func (f Fragment) Keys() []string {
	keys := make([]string, 0, len(f))
	for key := range f {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Lookup walks a dotted path through nested mappings.
func (f Fragment) Lookup(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var current any = map[string]any(f)
	for _, segment := range strings.Split(path, ".") {
		node, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func asMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case Fragment:
		return typed, true
	default:
		return nil, false
	}
}

// FragmentOf converts a decoded mapping into a Fragment. It reports false for
// any value that is not a mapping; nil converts to an empty Fragment.
func FragmentOf(value any) (Fragment, bool) {
	if value == nil {
		return Fragment{}, true
	}
	m, ok := asMap(value)
	if !ok {
		return nil, false
	}
	return Fragment(m).Clone(), true
}
