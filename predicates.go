package keyschema

import (
	"fmt"
	"reflect"
)

// Message keys emitted by the engine. They are stable identifiers, rendered into
// text by a separate formatter.
const (
	MsgMissing   = "is missing"
	MsgNotNil    = "cannot be defined"
	MsgNotFilled = "must be filled"
)

// PredicateFunc is an atomic boolean check of a value. It is never called for absent keys.
// A PredicateFunc must not panic on ordinary input; a panic is propagated to the caller
// of Evaluate unchanged.
type PredicateFunc func(value any) bool

// Predicate is a named check together with the message key emitted when it fails.
type Predicate struct {
	Name    string
	Message string
	Fn      PredicateFunc
}

func (p Predicate) validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("predicate name is required")
	case p.Name == NilName, p.Name == FilledName:
		return fmt.Errorf("predicate %s is built in and cannot be replaced", p.Name)
	case p.Fn == nil:
		return fmt.Errorf("predicate %s: missing function", p.Name)
	case p.Message == "":
		return fmt.Errorf("predicate %s: missing message", p.Name)
	}
	return nil
}

// builtinPredicates returns the predicates every engine starts with.
func builtinPredicates() map[string]Predicate {
	list := []Predicate{
		{Name: NilName, Message: MsgNotNil, Fn: isNil},
		{Name: FilledName, Message: MsgNotFilled, Fn: func(v any) bool { return classifyValue(v) == Present }},
		{Name: "str?", Message: "must be a string", Fn: isKind(reflect.String)},
		{Name: "int?", Message: "must be an integer", Fn: isKind(
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64)},
		{Name: "float?", Message: "must be a float", Fn: isKind(reflect.Float32, reflect.Float64)},
		{Name: "bool?", Message: "must be boolean", Fn: isKind(reflect.Bool)},
		{Name: "empty?", Message: "must be empty", Fn: func(v any) bool { return classifyValue(v) != Present }},
	}
	m := make(map[string]Predicate, len(list))
	for _, p := range list {
		m[p.Name] = p
	}
	return m
}

func isKind(kinds ...reflect.Kind) PredicateFunc {
	return func(v any) bool {
		if v == nil {
			return false
		}
		k := reflect.TypeOf(v).Kind()
		for _, want := range kinds {
			if k == want {
				return true
			}
		}
		return false
	}
}
