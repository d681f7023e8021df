package keyschema

import "reflect"

// Class is the presence classification of a key's value, computed once per key
// during evaluation.
type Class int

const (
	// Absent: the key is not in the input.
	Absent Class = iota
	// Nil: the key is present with a nil value.
	Nil
	// Blank: the key holds an empty string or an empty slice, array or map.
	Blank
	// Present: anything else, including 0 and false.
	Present
)

func (c Class) String() string {
	switch c {
	case Absent:
		return "absent"
	case Nil:
		return "nil"
	case Blank:
		return "blank"
	default:
		return "present"
	}
}

// Classify looks up key in input and classifies the result.
func Classify(input map[string]any, key string) (any, Class) {
	v, ok := input[key]
	if !ok {
		return nil, Absent
	}
	return v, classifyValue(v)
}

func classifyValue(v any) Class {
	if isNil(v) {
		return Nil
	}
	if isBlank(v) {
		return Blank
	}
	return Present
}

// isNil reports whether v is nil, including typed nil pointers, maps, slices and
// interfaces held in v.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case string:
		return x == ""
	case []byte:
		return len(x) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	}
	return false
}
