package keyschema

import (
	"fmt"
	"maps"
)

// combination is a key of the compatibility table. Structural predicates are keyed
// by kind alone; opaque predicates by kind and name.
type combination struct {
	macro Macro
	kind  PredicateKind
	name  string
}

func combinationOf(m Macro, p PredicateRef) combination {
	c := combination{macro: m, kind: p.Kind}
	if p.Kind == Opaque {
		c.name = p.Name
	}
	return c
}

// builtinForbidden holds the pairs every table forbids, whatever else it contains.
var builtinForbidden = map[combination]string{
	combinationOf(Maybe, NilPredicate()): "maybe macro skips nil values, so nil? could never pass",
}

// Compatibility is the set of macro/predicate pairs that contradict each other.
// Maybe with nil? is always forbidden, even by the zero value; Forbid adds to it.
// A Compatibility is not safe for concurrent modification; finish registering pairs
// before handing it to an engine.
type Compatibility struct {
	forbidden map[combination]string
}

// DefaultCompatibility returns a table holding only the built-in pairs.
func DefaultCompatibility() *Compatibility {
	return &Compatibility{forbidden: map[combination]string{}}
}

func (c *Compatibility) reason(m Macro, p PredicateRef) (string, bool) {
	k := combinationOf(m, p)
	if r, ok := builtinForbidden[k]; ok {
		return r, true
	}
	r, ok := c.forbidden[k]
	return r, ok
}

// Forbid registers a contradictory pair. The reason is reported in the error
// returned by Check. Built-in pairs keep their own reason.
func (c *Compatibility) Forbid(m Macro, p PredicateRef, reason string) *Compatibility {
	if _, ok := builtinForbidden[combinationOf(m, p)]; ok {
		return c
	}
	if c.forbidden == nil {
		c.forbidden = map[combination]string{}
	}
	c.forbidden[combinationOf(m, p)] = reason
	return c
}

// Allowed reports whether the pair is acceptable.
func (c *Compatibility) Allowed(m Macro, p PredicateRef) bool {
	_, bad := c.reason(m, p)
	return !bad
}

// Check returns an *InvalidSchemaError if the rule pairs its macro with a predicate
// it contradicts. Presence plays no part in the decision.
func (c *Compatibility) Check(r RuleSpec) error {
	reason, bad := c.reason(r.Macro, r.Predicate)
	if !bad {
		return nil
	}
	return newInvalidSchemaError(r, fmt.Sprintf("%s cannot be used with %s: %s", r.Macro, r.Predicate, reason), nil)
}

// Clone returns an independent copy of the table.
func (c *Compatibility) Clone() *Compatibility {
	return &Compatibility{forbidden: maps.Clone(c.forbidden)}
}
