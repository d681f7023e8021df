package keyschema

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Result of evaluating a schema against one input.
// A Result is created fresh for every evaluation and is not modified afterwards.
type Result struct {
	// Failing keys in schema declaration order. Empty when the input is valid.
	Errors []KeyErrors
}

// KeyErrors holds the message keys produced for one input key, in the order the
// evaluation stages produced them, without duplicates.
type KeyErrors struct {
	Key      string
	Messages []string
}

// Success reports whether every rule passed.
func (r *Result) Success() bool {
	return len(r.Errors) == 0
}

// Messages returns the message keys produced for key, or nil if the key passed.
func (r *Result) Messages(key string) []string {
	for _, ke := range r.Errors {
		if ke.Key == key {
			return slices.Clone(ke.Messages)
		}
	}
	return nil
}

// Keys returns the failing keys in declaration order.
func (r *Result) Keys() []string {
	keys := make([]string, len(r.Errors))
	for i, ke := range r.Errors {
		keys[i] = ke.Key
	}
	return keys
}

// Map returns the failures keyed by input key.
func (r *Result) Map() map[string][]string {
	m := make(map[string][]string, len(r.Errors))
	for _, ke := range r.Errors {
		m[ke.Key] = slices.Clone(ke.Messages)
	}
	return m
}

// ErrValidationFailed is matched (errors.Is) by the error returned from Result.Err.
var ErrValidationFailed = errors.New("validation failed")

// ValidationError adapts a failed Result to the error interface.
type ValidationError struct {
	Result *Result
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Result.Errors))
	for i, ke := range e.Result.Errors {
		parts[i] = fmt.Sprintf("%s: %s", ke.Key, strings.Join(ke.Messages, ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// Err returns nil on success, otherwise a *ValidationError wrapping r.
func (r *Result) Err() error {
	if r.Success() {
		return nil
	}
	return &ValidationError{Result: r}
}

// String produces a table of the failing keys and their messages.
func (r *Result) String() string {
	tw := table.NewWriter()
	tw.SetTitle("\nVALIDATION RESULT: %s\n", passFail(r.Success()))
	tw.AppendHeader(table.Row{"Key", "Messages"})
	for _, ke := range r.Errors {
		tw.AppendRow(table.Row{ke.Key, strings.Join(ke.Messages, "\n")})
	}
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Options.SeparateRows = true
	tw.SetStyle(style)
	return tw.Render()
}

func passFail(b bool) string {
	switch b {
	case true:
		return "PASS"
	default:
		return "FAIL"
	}
}
