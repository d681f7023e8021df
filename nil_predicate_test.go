package keyschema_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matryer/is"

	"github.com/ezachrisen/keyschema"
)

var (
	missingInput = map[string]any{}
	nilInput     = map[string]any{"foo": nil}
	blankInput   = map[string]any{"foo": ""}
	otherInput   = map[string]any{"foo": 23}
)

// Each case compiles one rule for key foo using nil? and evaluates it.
// A nil want means the input must pass.
func TestNilPredicate(t *testing.T) {
	nilp := keyschema.NilPredicate()

	cases := []struct {
		name  string
		rule  keyschema.RuleSpec
		input map[string]any
		want  []string
	}{
		{"required bare, missing", keyschema.RequiredKey("foo").Is(nilp), missingInput, []string{keyschema.MsgMissing, keyschema.MsgNotNil}},
		{"required bare, nil", keyschema.RequiredKey("foo").Is(nilp), nilInput, nil},
		{"required bare, blank", keyschema.RequiredKey("foo").Is(nilp), blankInput, []string{keyschema.MsgNotNil}},
		{"required bare, other", keyschema.RequiredKey("foo").Is(nilp), otherInput, []string{keyschema.MsgNotNil}},

		{"optional bare, missing", keyschema.OptionalKey("foo").Is(nilp), missingInput, nil},
		{"optional bare, nil", keyschema.OptionalKey("foo").Is(nilp), nilInput, nil},
		{"optional bare, blank", keyschema.OptionalKey("foo").Is(nilp), blankInput, []string{keyschema.MsgNotNil}},
		{"optional bare, other", keyschema.OptionalKey("foo").Is(nilp), otherInput, []string{keyschema.MsgNotNil}},

		{"required value, missing", keyschema.RequiredKey("foo").Value(nilp), missingInput, []string{keyschema.MsgMissing, keyschema.MsgNotNil}},
		{"required value, nil", keyschema.RequiredKey("foo").Value(nilp), nilInput, nil},
		{"required value, blank", keyschema.RequiredKey("foo").Value(nilp), blankInput, []string{keyschema.MsgNotNil}},
		{"required value, other", keyschema.RequiredKey("foo").Value(nilp), otherInput, []string{keyschema.MsgNotNil}},

		{"required filled, missing", keyschema.RequiredKey("foo").Filled(nilp), missingInput, []string{keyschema.MsgMissing, keyschema.MsgNotNil}},
		{"required filled, nil", keyschema.RequiredKey("foo").Filled(nilp), nilInput, []string{keyschema.MsgNotFilled}},
		{"required filled, blank", keyschema.RequiredKey("foo").Filled(nilp), blankInput, []string{keyschema.MsgNotFilled}},
		{"required filled, other", keyschema.RequiredKey("foo").Filled(nilp), otherInput, []string{keyschema.MsgNotNil}},

		{"optional value, missing", keyschema.OptionalKey("foo").Value(nilp), missingInput, nil},
		{"optional value, nil", keyschema.OptionalKey("foo").Value(nilp), nilInput, nil},
		{"optional value, blank", keyschema.OptionalKey("foo").Value(nilp), blankInput, []string{keyschema.MsgNotNil}},
		{"optional value, other", keyschema.OptionalKey("foo").Value(nilp), otherInput, []string{keyschema.MsgNotNil}},

		{"optional filled, missing", keyschema.OptionalKey("foo").Filled(nilp), missingInput, nil},
		{"optional filled, nil", keyschema.OptionalKey("foo").Filled(nilp), nilInput, []string{keyschema.MsgNotFilled}},
		{"optional filled, blank", keyschema.OptionalKey("foo").Filled(nilp), blankInput, []string{keyschema.MsgNotFilled}},
		{"optional filled, other", keyschema.OptionalKey("foo").Filled(nilp), otherInput, []string{keyschema.MsgNotNil}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := keyschema.Compile(c.rule)
			if err != nil {
				t.Fatalf("compiling %s: %v", c.rule, err)
			}
			res := s.Evaluate(c.input)
			if c.want == nil {
				if !res.Success() {
					t.Fatalf("wanted success, got %v", res.Map())
				}
				return
			}
			if res.Success() {
				t.Fatalf("wanted failure %v, got success", c.want)
			}
			if diff := cmp.Diff(c.want, res.Messages("foo")); diff != "" {
				t.Errorf("messages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMaybeNilIsRejected(t *testing.T) {
	is := is.New(t)

	for _, r := range []keyschema.RuleSpec{
		keyschema.RequiredKey("foo").Maybe(keyschema.NilPredicate()),
		keyschema.OptionalKey("foo").Maybe(keyschema.NilPredicate()),
	} {
		s, err := keyschema.Compile(r)
		is.True(s == nil)
		is.True(errors.Is(err, keyschema.ErrInvalidSchema))

		var ise *keyschema.InvalidSchemaError
		is.True(errors.As(err, &ise))
		is.Equal(ise.Key, "foo")
		is.Equal(ise.Macro, keyschema.Maybe)
		is.Equal(ise.Predicate, keyschema.NilPredicate())
		is.Equal(ise.Presence, r.Presence)
	}
}
