package module

import "github.com/goliatone/go-buildopts/layering"

// ExportKind tells how a module delivered its configuration value.
type ExportKind int

const (
	// ExportDirect means the module itself is the value.
	ExportDirect ExportKind = iota
	// ExportWrapped means the value sits under the module's default member.
	ExportWrapped
)

func (k ExportKind) String() string {
	switch k {
	case ExportDirect:
		return "direct"
	case ExportWrapped:
		return "wrapped"
	default:
		return "unknown"
	}
}

// Export is the loaded shape of a configuration module. Loaders decide the
// kind; consumers only ever read Value.
type Export struct {
	Kind  ExportKind
	Value any
}

// clone detaches the value so cached exports are never shared with callers.
func (e Export) clone() Export {
	e.Value = layering.Clone(e.Value)
	return e
}

// Direct builds an export whose module is the value.
func Direct(value any) Export {
	return Export{Kind: ExportDirect, Value: value}
}

// Wrapped builds an export whose default member is the value.
func Wrapped(value any) Export {
	return Export{Kind: ExportWrapped, Value: value}
}

// classifyData picks the export kind for plain decoded data. A truthy
// "default" member wraps the value.
func classifyData(value any) Export {
	if m, ok := value.(map[string]any); ok {
		if inner, ok := m["default"]; ok && truthy(inner) {
			return Wrapped(inner)
		}
	}
	return Direct(value)
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case uint64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}
