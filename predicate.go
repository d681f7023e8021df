package keyschema

import "fmt"

// PredicateKind identifies the family of a predicate reference.
type PredicateKind int

const (
	// NilCheck passes only for nil values.
	NilCheck PredicateKind = iota + 1
	// FilledCheck passes only for values that are neither nil nor blank.
	FilledCheck
	// Opaque predicates are resolved by name against the engine's predicate registry.
	Opaque
)

func (k PredicateKind) String() string {
	switch k {
	case NilCheck:
		return "nil"
	case FilledCheck:
		return "filled"
	case Opaque:
		return "opaque"
	default:
		return fmt.Sprintf("PredicateKind(%d)", int(k))
	}
}

// Canonical names of the structurally modeled predicates.
const (
	NilName    = "nil?"
	FilledName = "filled?"
)

// PredicateRef names an atomic check without executing it.
// It is a comparable value; two references are equal if they name the same check.
type PredicateRef struct {
	Kind PredicateKind
	// Name is set for Opaque predicates only.
	Name string
}

// NilPredicate returns a reference to the nil? predicate.
func NilPredicate() PredicateRef { return PredicateRef{Kind: NilCheck} }

// FilledPredicate returns a reference to the filled? predicate.
func FilledPredicate() PredicateRef { return PredicateRef{Kind: FilledCheck} }

// Named returns a reference to a predicate identified by name.
// The structurally modeled names nil? and filled? map to their own kinds.
func Named(name string) PredicateRef {
	return ParsePredicate(name)
}

// ParsePredicate converts a predicate name to a reference.
func ParsePredicate(name string) PredicateRef {
	switch name {
	case NilName:
		return NilPredicate()
	case FilledName:
		return FilledPredicate()
	default:
		return PredicateRef{Kind: Opaque, Name: name}
	}
}

// String returns the canonical predicate name.
func (p PredicateRef) String() string {
	switch p.Kind {
	case NilCheck:
		return NilName
	case FilledCheck:
		return FilledName
	case Opaque:
		return p.Name
	default:
		return "<none>"
	}
}

// IsZero reports whether p references no predicate at all.
func (p PredicateRef) IsZero() bool {
	return p.Kind == 0
}

// MarshalText implements encoding.TextMarshaler.
func (p PredicateRef) MarshalText() ([]byte, error) {
	if p.IsZero() {
		return nil, fmt.Errorf("empty predicate reference")
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PredicateRef) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("empty predicate name")
	}
	*p = ParsePredicate(string(b))
	return nil
}
