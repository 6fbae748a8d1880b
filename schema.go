package buildopts

import (
	"fmt"
	"sort"
	"strings"
)

// FieldDescriptor describes an option path and the type of its value.
type FieldDescriptor struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// Describe flattens fragment into sorted field descriptors. Nested mappings
// are walked; lists are described by their first element.
func Describe(fragment Fragment) []FieldDescriptor {
	descriptors := deriveFieldDescriptors(map[string]any(fragment), "")
	if descriptors == nil {
		return []FieldDescriptor{}
	}
	return descriptors
}

func deriveFieldDescriptors(value any, prefix string) []FieldDescriptor {
	if value == nil {
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{Path: prefix, Type: "nil"}}
	}

	if typed, ok := asMap(value); ok {
		if len(typed) == 0 {
			if prefix == "" {
				return nil
			}
			return []FieldDescriptor{{Path: prefix, Type: "map[string]any"}}
		}
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var fields []FieldDescriptor
		for _, key := range keys {
			fields = append(fields, deriveFieldDescriptors(typed[key], joinPath(prefix, key))...)
		}
		return fields
	}

	switch typed := value.(type) {
	case []any:
		elementType := "any"
		if len(typed) > 0 {
			elementType = typeName(typed[0])
		}
		return []FieldDescriptor{{Path: prefix, Type: "[]" + elementType}}
	default:
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{Path: prefix, Type: typeName(typed)}}
	}
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", value)
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
