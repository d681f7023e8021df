package keyschema

import (
	"fmt"
	"strings"
)

// Presence determines whether the absence of a key is itself a failure.
type Presence int

const (
	// Required keys must be present; an absent key fails with "is missing".
	Required Presence = iota + 1
	// Optional keys may be absent; an absent key always passes.
	Optional
)

func (p Presence) String() string {
	switch p {
	case Required:
		return "required"
	case Optional:
		return "optional"
	default:
		return fmt.Sprintf("Presence(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Presence) MarshalText() ([]byte, error) {
	switch p {
	case Required, Optional:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("invalid presence %d", int(p))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Presence) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "required":
		*p = Required
	case "optional":
		*p = Optional
	default:
		return fmt.Errorf("unknown presence %q", string(b))
	}
	return nil
}

// Macro gates when and how a predicate applies to a key's value.
type Macro int

const (
	// Bare applies the predicate directly to the value.
	Bare Macro = iota
	// Value applies the predicate to whatever is present, nil included.
	Value
	// Filled rejects nil and blank values with "must be filled" before the predicate runs.
	Filled
	// Maybe lets nil values pass without running the predicate.
	Maybe
)

func (m Macro) String() string {
	switch m {
	case Bare:
		return "bare"
	case Value:
		return "value"
	case Filled:
		return "filled"
	case Maybe:
		return "maybe"
	default:
		return fmt.Sprintf("Macro(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Macro) MarshalText() ([]byte, error) {
	switch m {
	case Bare, Value, Filled, Maybe:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("invalid macro %d", int(m))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
// An empty string is the bare macro.
func (m *Macro) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "", "bare":
		*m = Bare
	case "value":
		*m = Value
	case "filled":
		*m = Filled
	case "maybe":
		*m = Maybe
	default:
		return fmt.Errorf("unknown macro %q", string(b))
	}
	return nil
}

// A RuleSpec describes the rule for a single key, before compilation.
type RuleSpec struct {
	// The input key the rule applies to. (required)
	Key string `json:"key" yaml:"key"`

	// Whether the key must be present.
	Presence Presence `json:"presence" yaml:"presence"`

	// How the predicate is gated. The zero value is Bare.
	Macro Macro `json:"macro,omitempty" yaml:"macro,omitempty"`

	// The predicate applied to the value.
	Predicate PredicateRef `json:"predicate" yaml:"predicate"`
}

// String renders the rule in builder notation, e.g. required(foo).filled(nil?).
func (r RuleSpec) String() string {
	switch r.Macro {
	case Bare:
		return fmt.Sprintf("%s(%s){%s}", r.Presence, r.Key, r.Predicate)
	default:
		return fmt.Sprintf("%s(%s).%s(%s)", r.Presence, r.Key, r.Macro, r.Predicate)
	}
}

// KeyBuilder starts a rule for one key. Finish it with one of the macro methods.
type KeyBuilder struct {
	key      string
	presence Presence
}

// RequiredKey starts a rule for a key that must be present.
func RequiredKey(key string) KeyBuilder {
	return KeyBuilder{key: key, presence: Required}
}

// OptionalKey starts a rule for a key that may be absent.
func OptionalKey(key string) KeyBuilder {
	return KeyBuilder{key: key, presence: Optional}
}

// Is applies p directly to the value.
func (b KeyBuilder) Is(p PredicateRef) RuleSpec { return b.spec(Bare, p) }

// Value applies p to whatever value is present.
func (b KeyBuilder) Value(p PredicateRef) RuleSpec { return b.spec(Value, p) }

// Filled applies p only to values that are neither nil nor blank.
func (b KeyBuilder) Filled(p PredicateRef) RuleSpec { return b.spec(Filled, p) }

// Maybe applies p only to non-nil values.
func (b KeyBuilder) Maybe(p PredicateRef) RuleSpec { return b.spec(Maybe, p) }

func (b KeyBuilder) spec(m Macro, p PredicateRef) RuleSpec {
	return RuleSpec{
		Key:       b.key,
		Presence:  b.presence,
		Macro:     m,
		Predicate: p,
	}
}
