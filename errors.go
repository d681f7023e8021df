package keyschema

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSchema is matched (errors.Is) by every *InvalidSchemaError.
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrUnknownPredicate is returned when an opaque predicate name is not registered
	// with the engine.
	ErrUnknownPredicate = errors.New("unknown predicate")
)

// InvalidSchemaError is returned by Compile when a rule can never be part of a valid
// schema. It is not retryable: the rule itself must be changed.
type InvalidSchemaError struct {
	Key       string
	Presence  Presence
	Macro     Macro
	Predicate PredicateRef
	// Reason describes what is wrong with the rule.
	Reason string
	// Err is an optional underlying cause, such as ErrUnknownPredicate.
	Err error
}

func (e *InvalidSchemaError) Error() string {
	rs := RuleSpec{Key: e.Key, Presence: e.Presence, Macro: e.Macro, Predicate: e.Predicate}
	if e.Err != nil {
		return fmt.Sprintf("invalid schema: %s: %s: %v", rs, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid schema: %s: %s", rs, e.Reason)
}

func (e *InvalidSchemaError) Unwrap() error {
	return e.Err
}

// Is makes every InvalidSchemaError match ErrInvalidSchema.
func (e *InvalidSchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

func newInvalidSchemaError(r RuleSpec, reason string, cause error) *InvalidSchemaError {
	return &InvalidSchemaError{
		Key:       r.Key,
		Presence:  r.Presence,
		Macro:     r.Macro,
		Predicate: r.Predicate,
		Reason:    reason,
		Err:       cause,
	}
}
