package keyschema_test

import (
	"strings"
	"testing"

	"github.com/matryer/is"
	"gopkg.in/yaml.v3"

	"github.com/ezachrisen/keyschema"
)

func TestRuleSpecString(t *testing.T) {
	cases := map[string]keyschema.RuleSpec{
		"required(foo){nil?}":        keyschema.RequiredKey("foo").Is(keyschema.NilPredicate()),
		"optional(foo).value(nil?)":  keyschema.OptionalKey("foo").Value(keyschema.NilPredicate()),
		"required(foo).filled(nil?)": keyschema.RequiredKey("foo").Filled(keyschema.NilPredicate()),
		"optional(foo).maybe(str?)":  keyschema.OptionalKey("foo").Maybe(keyschema.Named("str?")),
	}
	for want, r := range cases {
		if got := r.String(); got != want {
			t.Errorf("got %q, wanted %q", got, want)
		}
	}
}

func TestParsePredicate(t *testing.T) {
	is := is.New(t)
	is.Equal(keyschema.ParsePredicate("nil?"), keyschema.NilPredicate())
	is.Equal(keyschema.ParsePredicate("filled?"), keyschema.FilledPredicate())
	is.Equal(keyschema.Named("str?"), keyschema.PredicateRef{Kind: keyschema.Opaque, Name: "str?"})
	is.Equal(keyschema.Named("str?").String(), "str?")
	is.Equal(keyschema.NilPredicate().String(), "nil?")
	is.True(keyschema.PredicateRef{}.IsZero())
}

func TestRuleSpecYAML(t *testing.T) {
	is := is.New(t)

	src := `
- key: foo
  presence: required
  predicate: nil?
- key: bar
  presence: Optional
  macro: maybe
  predicate: str?
`
	var rules []keyschema.RuleSpec
	is.NoErr(yaml.Unmarshal([]byte(src), &rules))
	is.Equal(rules, []keyschema.RuleSpec{
		keyschema.RequiredKey("foo").Is(keyschema.NilPredicate()),
		keyschema.OptionalKey("bar").Maybe(keyschema.Named("str?")),
	})

	out, err := yaml.Marshal(rules)
	is.NoErr(err)
	is.True(strings.Contains(string(out), "presence: optional"))
	is.True(strings.Contains(string(out), "macro: maybe"))
	is.True(!strings.Contains(string(out), "macro: bare")) // zero macro is omitted

	var back []keyschema.RuleSpec
	is.NoErr(yaml.Unmarshal(out, &back))
	is.Equal(back, rules)
}

func TestRuleSpecYAMLErrors(t *testing.T) {
	for _, src := range []string{
		"{key: a, presence: sometimes, predicate: nil?}",
		"{key: a, presence: required, macro: perhaps, predicate: nil?}",
		"{key: a, presence: required, predicate: ''}",
	} {
		var r keyschema.RuleSpec
		if err := yaml.Unmarshal([]byte(src), &r); err == nil {
			t.Errorf("wanted error decoding %s", src)
		}
	}
}
