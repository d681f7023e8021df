package keyschema

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine compiles rule specifications into Schemas. It holds the predicate registry
// used to resolve opaque predicate names and the table of forbidden macro/predicate
// pairs.
//
// Registering predicates is safe while other goroutines compile; schemas already
// compiled are not affected by later registrations.
type Engine struct {
	// Mutex for the predicate registry
	mu         sync.RWMutex
	predicates map[string]Predicate

	compat *Compatibility
	log    *zap.Logger

	// first invalid option, reported by Compile and Check
	optErr error
}

// NewEngine initializes an engine with the built-in predicates.
func NewEngine(opts ...EngineOption) *Engine {
	e := Engine{
		predicates: builtinPredicates(),
		compat:     DefaultCompatibility(),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return &e
}

// EngineOption configures an Engine.
type EngineOption func(e *Engine)

// WithLogger sets the logger used during compilation.
// Default: a no-op logger.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithPredicate registers a predicate when the engine is created, with the same rules as
// Register. An invalid predicate is not registered; every Compile and Check on the engine
// then returns its error.
func WithPredicate(p Predicate) EngineOption {
	return func(e *Engine) {
		if err := p.validate(); err != nil {
			if e.optErr == nil {
				e.optErr = fmt.Errorf("engine option: %w", err)
			}
			return
		}
		e.predicates[p.Name] = p
	}
}

// WithCompatibility replaces the table of forbidden macro/predicate pairs.
// Maybe with nil? stays forbidden whatever the table holds.
// The engine keeps its own copy.
// Default: DefaultCompatibility()
func WithCompatibility(c *Compatibility) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.compat = c.Clone()
		}
	}
}

// Register adds predicates to the engine's registry, replacing any existing
// predicate with the same name. The structural predicates nil? and filled? cannot be
// replaced.
func (e *Engine) Register(preds ...Predicate) error {
	for _, p := range preds {
		if err := p.validate(); err != nil {
			return err
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range preds {
		e.predicates[p.Name] = p
		e.log.Debug("predicate registered", zap.String("predicate", p.Name))
	}
	return nil
}

// Predicate returns the registered predicate with the name.
func (e *Engine) Predicate(name string) (Predicate, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.predicates[name]
	return p, ok
}

// compileOptions are the options used when compiling a schema
type compileOptions struct {
	id string
}

// CompilationOption configures a single call to Compile.
type CompilationOption func(o *compileOptions)

// WithID sets the schema identifier. If no ID is given, a random UUID is used.
func WithID(id string) CompilationOption {
	return func(o *compileOptions) {
		o.id = id
	}
}

// Compile validates every rule and returns an immutable Schema.
// The first invalid rule aborts compilation with an *InvalidSchemaError; no schema is
// returned in that case.
func (e *Engine) Compile(specs []RuleSpec, opts ...CompilationOption) (*Schema, error) {
	var o compileOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}

	if e.optErr != nil {
		return nil, e.optErr
	}
	nodes, err := e.compileRules(specs)
	if err != nil {
		e.log.Warn("schema rejected", zap.String("schema", o.id), zap.Error(err))
		return nil, err
	}

	e.log.Debug("schema compiled", zap.String("schema", o.id), zap.Int("rules", len(nodes)))
	return &Schema{id: o.id, nodes: nodes}, nil
}

// Check validates the rules without producing a schema.
func (e *Engine) Check(specs []RuleSpec) error {
	if e.optErr != nil {
		return e.optErr
	}
	_, err := e.compileRules(specs)
	return err
}

func (e *Engine) compileRules(specs []RuleSpec) ([]ruleNode, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	seen := make(map[string]struct{}, len(specs))
	nodes := make([]ruleNode, 0, len(specs))
	for _, r := range specs {
		if r.Key == "" {
			return nil, newInvalidSchemaError(r, "key is required", nil)
		}
		if _, dup := seen[r.Key]; dup {
			return nil, newInvalidSchemaError(r, "duplicate key", nil)
		}
		seen[r.Key] = struct{}{}

		n, err := e.compileRule(r)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// compileRule turns one spec into a rule node. Callers must hold e.mu.
func (e *Engine) compileRule(r RuleSpec) (ruleNode, error) {
	if _, err := r.Presence.MarshalText(); err != nil {
		return ruleNode{}, newInvalidSchemaError(r, "unknown presence", err)
	}
	if _, err := r.Macro.MarshalText(); err != nil {
		return ruleNode{}, newInvalidSchemaError(r, "unknown macro", err)
	}
	if r.Predicate.IsZero() {
		return ruleNode{}, newInvalidSchemaError(r, "predicate is required", nil)
	}

	if err := e.compat.Check(r); err != nil {
		return ruleNode{}, err
	}

	p, ok := e.predicates[r.Predicate.String()]
	if !ok {
		return ruleNode{}, newInvalidSchemaError(r, "predicate not registered",
			fmt.Errorf("%w: %s", ErrUnknownPredicate, r.Predicate))
	}

	return ruleNode{
		spec:    r,
		check:   p.Fn,
		message: p.Message,
	}, nil
}

var defaultEngine = NewEngine()

// Compile compiles the rules with an engine that knows only the built-in predicates.
func Compile(specs ...RuleSpec) (*Schema, error) {
	return defaultEngine.Compile(specs)
}
