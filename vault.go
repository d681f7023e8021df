package keyschema

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Vault holds a set of compiled schemas by ID. Readers use the current set
// without locking; writers replace it atomically, so a reader sees either all of a
// batch of mutations or none of it.
//
// The zero value is an empty vault that compiles with the built-in predicates only.
type Vault struct {
	schemas atomic.Pointer[map[string]*Schema] // current immutable set
	mu      sync.Mutex                         // serializes writers
	engine  *Engine
}

// SchemaMutation defines a single change to the vault.
type SchemaMutation struct {
	// Required; ID of the schema being added, replaced or deleted
	ID string

	// Rules of the new schema. If Rules is nil, the schema with ID is deleted.
	Rules []RuleSpec
}

// NewVault creates a vault that compiles schemas with e.
// If e is nil, an engine with the built-in predicates is used.
func NewVault(e *Engine, initial ...*Schema) (*Vault, error) {
	if e == nil {
		e = NewEngine()
	}
	v := &Vault{engine: e}
	set := make(map[string]*Schema, len(initial))
	for _, s := range initial {
		if s == nil {
			return nil, fmt.Errorf("nil schema in initial set")
		}
		if _, dup := set[s.ID()]; dup {
			return nil, fmt.Errorf("duplicate schema ID %q in initial set", s.ID())
		}
		set[s.ID()] = s
	}
	v.schemas.Store(&set)
	return v, nil
}

// current returns the current set; nil for a zero Vault.
func (v *Vault) current() map[string]*Schema {
	if p := v.schemas.Load(); p != nil {
		return *p
	}
	return nil
}

// Schema returns the schema with the given ID.
func (v *Vault) Schema(id string) (*Schema, bool) {
	s, ok := v.current()[id]
	return s, ok
}

// IDs returns the IDs of the schemas currently held, sorted.
func (v *Vault) IDs() []string {
	return slices.Sorted(maps.Keys(v.current()))
}

// Len returns the number of schemas currently held.
func (v *Vault) Len() int {
	return len(v.current())
}

// Evaluate evaluates input against the schema with the given ID.
func (v *Vault) Evaluate(id string, input map[string]any) (*Result, error) {
	s, ok := v.Schema(id)
	if !ok {
		return nil, fmt.Errorf("schema %q not found", id)
	}
	return s.Evaluate(input), nil
}

// ApplyMutations makes the changes to the schemas stored in the vault.
// All new rule lists are compiled first; if any fails to compile, or a deletion names
// an unknown schema, the vault is left unchanged.
func (v *Vault) ApplyMutations(mutations []SchemaMutation) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.engine == nil {
		v.engine = defaultEngine
	}
	next := maps.Clone(v.current())
	if next == nil {
		next = map[string]*Schema{}
	}
	for _, m := range mutations {
		if m.ID == "" {
			return fmt.Errorf("mutation without schema ID")
		}
		if m.Rules == nil {
			if _, ok := next[m.ID]; !ok {
				return fmt.Errorf("deleting schema %s: not found", m.ID)
			}
			delete(next, m.ID)
			continue
		}
		s, err := v.engine.Compile(m.Rules, WithID(m.ID))
		if err != nil {
			return fmt.Errorf("upserting schema %s: %w", m.ID, err)
		}
		next[m.ID] = s
	}

	v.schemas.Store(&next)
	v.engine.log.Debug("vault updated",
		zap.Int("mutations", len(mutations)),
		zap.Int("schemas", len(next)))
	return nil
}
