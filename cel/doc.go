// Package cel provides keyschema predicates backed by Google's cel-go expression engine.
//
// See https://github.com/google/cel-go and https://opensource.google/projects/cel for more information
// about CEL. Expressions must conform to the CEL spec: https://github.com/google/cel-spec.
//
// # Predicate Expressions
//
// A predicate expression refers to the value under test with the variable `value`, declared
// with the dynamic type, and must produce a bool:
//
//	p, err := cel.Predicate("adult?", `value >= 18`, "must be an adult")
//	...
//	err = engine.Register(p)
//
// The expression is parsed and type-checked when the predicate is created; a syntax error or a
// non-boolean expression is reported then, not during evaluation.
//
// Evaluation errors, for example comparing a string with a number, count as a failed check.
// The CEL string extension functions (ext.Strings) are available in every expression.
package cel
