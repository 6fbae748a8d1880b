// Package layering holds the reflection helpers used to detach and deep merge
// option fragments. Fragments are plain nested values (maps, slices and
// scalars), so everything here works on reflect.Value trees.
package layering

import "reflect"

// Clone returns a deep copy of value. Maps, slices, arrays and pointers are
// duplicated so the result shares no mutable state with the input.
func Clone[T any](value T) T {
	var zero T
	cloned := cloneValue(reflect.ValueOf(value))
	if !cloned.IsValid() {
		return zero
	}
	return convert[T](cloned)
}

// MergeLayers composes values ordered from strongest to weakest. Mappings are
// merged key by key, nil entries never erase a weaker value, and any other
// value from a stronger layer replaces the weaker one wholesale.
func MergeLayers[T any](layers ...T) T {
	var zero T
	if len(layers) == 0 {
		return zero
	}

	merged := cloneValue(reflect.ValueOf(layers[len(layers)-1]))
	for i := len(layers) - 2; i >= 0; i-- {
		merged = mergeValue(reflect.ValueOf(layers[i]), merged)
	}
	if !merged.IsValid() {
		return zero
	}
	return convert[T](merged)
}

// DeepMerge merges strong over weak. Either side may be nil.
func DeepMerge(strong, weak any) any {
	if strong == nil {
		return Clone(weak)
	}
	if weak == nil {
		return Clone(strong)
	}
	merged := mergeValue(reflect.ValueOf(strong), reflect.ValueOf(weak))
	if !merged.IsValid() {
		return nil
	}
	return merged.Interface()
}

func convert[T any](v reflect.Value) T {
	var zero T
	target := reflect.TypeOf(&zero).Elem()
	if v.Type() == target {
		return v.Interface().(T)
	}
	if !v.Type().ConvertibleTo(target) {
		return zero
	}
	result := reflect.New(target).Elem()
	result.Set(v.Convert(target))
	return result.Interface().(T)
}

func mergeValue(strong, weak reflect.Value) reflect.Value {
	if !strong.IsValid() {
		return cloneValue(weak)
	}

	switch strong.Kind() {
	case reflect.Pointer:
		if strong.IsNil() {
			return cloneValue(weak)
		}
		var weakElem reflect.Value
		if weak.IsValid() && weak.Kind() == reflect.Pointer && !weak.IsNil() {
			weakElem = weak.Elem()
		}
		result := reflect.New(strong.Type().Elem())
		result.Elem().Set(mergeValue(strong.Elem(), weakElem))
		return result
	case reflect.Interface:
		if strong.IsNil() {
			return cloneValue(weak)
		}
		var weakElem reflect.Value
		if weak.IsValid() {
			weakElem = weak
			if weak.Kind() == reflect.Interface {
				if weak.IsNil() {
					weakElem = reflect.Value{}
				} else {
					weakElem = weak.Elem()
				}
			}
		}
		return mergeValue(strong.Elem(), weakElem).Convert(strong.Type())
	case reflect.Map:
		if strong.IsNil() {
			return cloneValue(weak)
		}
		if weak.IsValid() && weak.Kind() == reflect.Interface && !weak.IsNil() {
			weak = weak.Elem()
		}
		result := reflect.MakeMapWithSize(strong.Type(), strong.Len())
		if weak.IsValid() && weak.Kind() == reflect.Map && !weak.IsNil() {
			keyType, elemType := strong.Type().Key(), strong.Type().Elem()
			iter := weak.MapRange()
			for iter.Next() {
				key, ok := assignable(iter.Key(), keyType)
				if !ok {
					continue
				}
				if value, ok := assignable(cloneValue(iter.Value()), elemType); ok {
					result.SetMapIndex(key, value)
				}
			}
		}
		iter := strong.MapRange()
		for iter.Next() {
			key := iter.Key()
			value := iter.Value()
			if isNilEntry(value) {
				continue
			}
			if existing := result.MapIndex(key); existing.IsValid() {
				result.SetMapIndex(key, mergeValue(value, existing))
				continue
			}
			result.SetMapIndex(key, cloneValue(value))
		}
		return result
	case reflect.Struct:
		result := reflect.New(strong.Type()).Elem()
		var weakStruct reflect.Value
		if weak.IsValid() && weak.Type() == strong.Type() {
			weakStruct = weak
		}
		for i := 0; i < strong.NumField(); i++ {
			field := result.Field(i)
			if !field.CanSet() {
				continue
			}
			var weakField reflect.Value
			if weakStruct.IsValid() {
				weakField = weakStruct.Field(i)
			}
			field.Set(mergeValue(strong.Field(i), weakField))
		}
		return result
	default:
		return cloneValue(strong)
	}
}

// assignable adapts v to typ when the two share a kind, so named map types
// such as a fragment merge with plain maps.
func assignable(v reflect.Value, typ reflect.Type) (reflect.Value, bool) {
	switch {
	case v.Type().AssignableTo(typ):
		return v, true
	case v.Type().ConvertibleTo(typ) && v.Kind() == typ.Kind():
		return v.Convert(typ), true
	default:
		return reflect.Value{}, false
	}
}

func isNilEntry(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	default:
		return false
	}
}

func cloneValue(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.New(v.Type().Elem())
		clone.Elem().Set(cloneValue(v.Elem()))
		return clone
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		elem := cloneValue(v.Elem())
		if !elem.IsValid() {
			return reflect.Zero(v.Type())
		}
		return elem.Convert(v.Type())
	case reflect.Struct:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			field := clone.Field(i)
			if !field.CanSet() {
				continue
			}
			field.Set(cloneValue(v.Field(i)))
		}
		return clone
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return clone
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	case reflect.Array:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	default:
		if !v.CanInterface() {
			return reflect.Zero(v.Type())
		}
		return reflect.ValueOf(v.Interface())
	}
}
