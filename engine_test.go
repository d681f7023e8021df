package keyschema_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/matryer/is"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ezachrisen/keyschema"
)

func TestCompileErrors(t *testing.T) {
	str := keyschema.Named("str?")

	cases := []struct {
		name    string
		rules   []keyschema.RuleSpec
		unknown bool
	}{
		{name: "empty key", rules: []keyschema.RuleSpec{keyschema.RequiredKey("").Is(str)}},
		{name: "duplicate key", rules: []keyschema.RuleSpec{
			keyschema.RequiredKey("a").Is(str),
			keyschema.OptionalKey("a").Is(str),
		}},
		{name: "no presence", rules: []keyschema.RuleSpec{{Key: "a", Predicate: str}}},
		{name: "bad macro", rules: []keyschema.RuleSpec{{Key: "a", Presence: keyschema.Required, Macro: 42, Predicate: str}}},
		{name: "no predicate", rules: []keyschema.RuleSpec{{Key: "a", Presence: keyschema.Required}}},
		{name: "unknown predicate", rules: []keyschema.RuleSpec{keyschema.RequiredKey("a").Is(keyschema.Named("adult?"))}, unknown: true},
		{name: "contradiction after valid rules", rules: []keyschema.RuleSpec{
			keyschema.RequiredKey("a").Is(str),
			keyschema.RequiredKey("b").Maybe(keyschema.NilPredicate()),
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			is := is.New(t)
			e := keyschema.NewEngine()

			s, err := e.Compile(c.rules)
			is.True(s == nil) // no partially built schema
			is.True(errors.Is(err, keyschema.ErrInvalidSchema))
			is.Equal(errors.Is(err, keyschema.ErrUnknownPredicate), c.unknown)

			// Check reports the same error without producing a schema
			is.Equal(e.Check(c.rules).Error(), err.Error())
		})
	}
}

func TestCompileSchemaIdentity(t *testing.T) {
	is := is.New(t)
	e := keyschema.NewEngine()
	rules := []keyschema.RuleSpec{
		keyschema.RequiredKey("name").Filled(keyschema.Named("str?")),
		keyschema.OptionalKey("age").Maybe(keyschema.Named("int?")),
	}

	s, err := e.Compile(rules, keyschema.WithID("person"))
	is.NoErr(err)
	is.Equal(s.ID(), "person")
	is.Equal(s.Keys(), []string{"name", "age"})
	is.Equal(s.Rules(), rules)

	// Changing the returned copy does not change the schema
	s.Rules()[0].Key = "changed"
	is.Equal(s.Keys()[0], "name")

	anon, err := e.Compile(rules)
	is.NoErr(err)
	_, err = uuid.Parse(anon.ID())
	is.NoErr(err)
}

func TestRegisterPredicate(t *testing.T) {
	is := is.New(t)
	e := keyschema.NewEngine()

	positive := keyschema.Predicate{
		Name:    "positive?",
		Message: "must be positive",
		Fn: func(v any) bool {
			n, ok := v.(int)
			return ok && n > 0
		},
	}
	is.NoErr(e.Register(positive))

	got, ok := e.Predicate("positive?")
	is.True(ok)
	is.Equal(got.Message, "must be positive")

	s, err := e.Compile([]keyschema.RuleSpec{keyschema.RequiredKey("n").Value(keyschema.Named("positive?"))})
	is.NoErr(err)
	is.True(s.Evaluate(map[string]any{"n": 3}).Success())
	is.Equal(s.Evaluate(map[string]any{"n": -3}).Messages("n"), []string{"must be positive"})

	// Schemas compiled earlier keep the function they were compiled with
	is.NoErr(e.Register(keyschema.Predicate{Name: "positive?", Message: "replaced", Fn: func(any) bool { return false }}))
	is.True(s.Evaluate(map[string]any{"n": 3}).Success())
}

func TestRegisterInvalidPredicate(t *testing.T) {
	fn := func(any) bool { return true }
	cases := []keyschema.Predicate{
		{Message: "m", Fn: fn},
		{Name: "x?", Message: "m"},
		{Name: "x?", Fn: fn},
		{Name: keyschema.NilName, Message: "m", Fn: fn},
		{Name: keyschema.FilledName, Message: "m", Fn: fn},
	}
	for _, p := range cases {
		e := keyschema.NewEngine()
		if err := e.Register(p); err == nil {
			t.Errorf("wanted error registering %+v", p)
		}
	}
}

func TestWithPredicate(t *testing.T) {
	is := is.New(t)
	even := keyschema.Predicate{
		Name:    "even?",
		Message: "must be even",
		Fn: func(v any) bool {
			n, ok := v.(int)
			return ok && n%2 == 0
		},
	}
	e := keyschema.NewEngine(keyschema.WithPredicate(even))

	_, ok := e.Predicate("even?")
	is.True(ok)
	s, err := e.Compile([]keyschema.RuleSpec{keyschema.RequiredKey("n").Is(keyschema.Named("even?"))})
	is.NoErr(err)
	is.Equal(s.Evaluate(map[string]any{"n": 3}).Messages("n"), []string{"must be even"})
}

func TestWithInvalidPredicate(t *testing.T) {
	is := is.New(t)
	fn := func(any) bool { return true }
	e := keyschema.NewEngine(
		keyschema.WithPredicate(keyschema.Predicate{Name: keyschema.NilName, Message: "m", Fn: fn}),
		keyschema.WithPredicate(keyschema.Predicate{Name: "x?", Message: "m"}),
	)

	rules := []keyschema.RuleSpec{keyschema.RequiredKey("a").Is(keyschema.NilPredicate())}
	s, err := e.Compile(rules)
	is.True(s == nil)
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "nil? is built in")) // first invalid option is reported
	is.True(e.Check(rules) != nil)

	_, ok := e.Predicate("x?")
	is.True(!ok)
}

func TestCompileLogging(t *testing.T) {
	is := is.New(t)
	core, logs := observer.New(zapcore.DebugLevel)
	e := keyschema.NewEngine(keyschema.WithLogger(zap.New(core)))

	_, err := e.Compile([]keyschema.RuleSpec{keyschema.RequiredKey("a").Is(keyschema.NilPredicate())}, keyschema.WithID("ok"))
	is.NoErr(err)
	compiled := logs.FilterMessage("schema compiled").All()
	is.Equal(len(compiled), 1)
	is.Equal(compiled[0].ContextMap()["schema"], "ok")
	is.Equal(compiled[0].ContextMap()["rules"], int64(1))

	_, err = e.Compile([]keyschema.RuleSpec{keyschema.RequiredKey("a").Maybe(keyschema.NilPredicate())}, keyschema.WithID("bad"))
	is.True(err != nil)
	rejected := logs.FilterMessage("schema rejected").All()
	is.Equal(len(rejected), 1)
	is.Equal(rejected[0].Level, zapcore.WarnLevel)
}
