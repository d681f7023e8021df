package cel

import (
	"fmt"

	"github.com/ezachrisen/keyschema"
	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
)

// ValueVar is the name under which the value being checked is available in expressions.
const ValueVar = "value"

// Compiler compiles CEL expressions into keyschema predicates.
// A Compiler is safe for concurrent use.
type Compiler struct {
	env *celgo.Env
}

// NewCompiler creates a compiler. Additional environment options, such as custom
// functions, are added after the built-in declarations.
func NewCompiler(opts ...celgo.EnvOption) (*Compiler, error) {
	base := []celgo.EnvOption{
		celgo.Variable(ValueVar, celgo.DynType),
		ext.Strings(),
	}
	env, err := celgo.NewEnv(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("creating CEL environment: %w", err)
	}
	return &Compiler{env: env}, nil
}

// Predicate parses and checks expr and returns a predicate that evaluates it.
func (c *Compiler) Predicate(name, expr, message string) (keyschema.Predicate, error) {
	if name == "" {
		return keyschema.Predicate{}, fmt.Errorf("predicate name is required")
	}

	// Parse the expression to an AST
	ast, iss := c.env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return keyschema.Predicate{}, fmt.Errorf("parsing predicate %s: %w", name, iss.Err())
	}

	// Type-check the parsed AST against the declarations
	checked, iss := c.env.Check(ast)
	if iss != nil && iss.Err() != nil {
		return keyschema.Predicate{}, fmt.Errorf("checking predicate %s: %w", name, iss.Err())
	}

	if !checked.OutputType().IsExactType(celgo.BoolType) {
		return keyschema.Predicate{}, fmt.Errorf("predicate %s: expression must produce a bool, got %s", name, checked.OutputType())
	}

	prg, err := c.env.Program(checked)
	if err != nil {
		return keyschema.Predicate{}, fmt.Errorf("generating program for predicate %s: %w", name, err)
	}

	return keyschema.Predicate{
		Name:    name,
		Message: message,
		Fn:      programFunc(prg),
	}, nil
}

// programFunc adapts a CEL program to a predicate function.
func programFunc(prg celgo.Program) keyschema.PredicateFunc {
	return func(v any) bool {
		out, _, err := prg.Eval(map[string]any{ValueVar: v})
		if err != nil {
			return false
		}
		pass, ok := out.Value().(bool)
		return ok && pass
	}
}

// Predicate compiles expr with a compiler using the default environment.
func Predicate(name, expr, message string) (keyschema.Predicate, error) {
	c, err := NewCompiler()
	if err != nil {
		return keyschema.Predicate{}, err
	}
	return c.Predicate(name, expr, message)
}
