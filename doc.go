// Package keyschema provides a declarative validation engine for key/value input.
//
// A schema is a list of key rules. Each rule states whether the key must be present
// (Required) or may be left out (Optional), a macro that gates when the rule's predicate
// runs, and the predicate itself.
//
// Typical use is as follows:
//
//  1. Describe the rules for each key with RequiredKey / OptionalKey and a macro
//  2. Create an engine, registering any extra predicates
//  3. Use the engine to compile the rules into a Schema
//  4. Evaluate the Schema against any number of inputs
//  5. Inspect the results
//
// # Macros
//
//	Is(p)      the predicate runs on whatever value is there, nil included
//	Value(p)   same as Is
//	Filled(p)  nil and blank values fail with "must be filled"; otherwise p runs
//	Maybe(p)   nil values pass; otherwise p runs
//
// An absent Required key reports "is missing" followed by the predicate's message; the
// predicate is not called. An absent Optional key is skipped.
//
// Some macro/predicate pairs contradict each other. Maybe(nil?) asks to run the nil check
// only on values that are not nil, which can never be meaningful. Such pairs are rejected
// when the schema is compiled, before any input is seen.
//
// # Results
//
// Evaluation never returns an error. Invalid input yields a Result carrying message keys
// per failing key, in the order the keys were declared. The message keys
// ("is missing", "cannot be defined", "must be filled", ...) are stable identifiers meant
// to be rendered by a separate formatter.
//
// Schema.Diagnose returns the same Result together with the stages each rule went
// through, for explaining why a message was produced.
//
// # Concurrency
//
// A compiled Schema is never modified. It may be evaluated from any number of goroutines
// at the same time; each evaluation allocates its own Result.
// A Vault holds compiled schemas by ID and swaps in new versions atomically, without
// blocking evaluations in progress.
package keyschema
