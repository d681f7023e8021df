package keyschema

import (
	"fmt"
	"slices"
)

// Evaluate applies every rule to the input, in declaration order, and returns the
// outcome. Evaluation never fails; invalid input yields a Result with failures.
// A nil input behaves like an empty one.
func (s *Schema) Evaluate(input map[string]any) *Result {
	res, _ := s.eval(input, false)
	return res
}

// Diagnose evaluates the input like Evaluate and also returns a record of the
// stages each rule went through.
func (s *Schema) Diagnose(input map[string]any) (*Result, *Diagnostics) {
	return s.eval(input, true)
}

func (s *Schema) eval(input map[string]any, diagnose bool) (*Result, *Diagnostics) {
	res := &Result{}
	var diag *Diagnostics
	if diagnose {
		diag = &Diagnostics{SchemaID: s.id, Keys: make([]KeyDiagnostics, len(s.nodes))}
	}

	for i := range s.nodes {
		var kd *KeyDiagnostics
		if diag != nil {
			kd = &diag.Keys[i]
		}
		msgs := s.nodes[i].evaluate(input, kd)
		if len(msgs) > 0 {
			res.Errors = append(res.Errors, KeyErrors{Key: s.nodes[i].spec.Key, Messages: msgs})
		}
	}
	return res, diag
}

// evaluate runs the stages for one key: presence, macro gating, predicate.
// It returns the de-duplicated message keys in the order they were produced.
// If d is not nil, every stage reached is recorded in it.
func (n *ruleNode) evaluate(input map[string]any, d *KeyDiagnostics) []string {
	var msgs []string
	emit := func(m string) {
		if !slices.Contains(msgs, m) {
			msgs = append(msgs, m)
		}
	}
	step := func(st Stage, pass bool, msg, note string) {
		if d != nil {
			d.Steps = append(d.Steps, Step{Stage: st, Pass: pass, Message: msg, Note: note})
		}
	}

	v, class := Classify(input, n.spec.Key)
	if d != nil {
		d.Rule = n.spec
		d.Class = class
		d.Value = v
	}

	if class == Absent {
		if n.spec.Presence == Optional {
			step(StagePresence, true, "", "optional key absent")
			return nil
		}
		// No predicate is satisfied by a missing value, not even nil?, so the
		// predicate's message is reported next to the missing key.
		emit(MsgMissing)
		step(StagePresence, false, MsgMissing, "required key absent")
		emit(n.message)
		step(StagePredicate, false, n.message, "no value to check")
		return msgs
	}
	step(StagePresence, true, "", "key present")

	switch n.spec.Macro {
	case Filled:
		if class == Nil || class == Blank {
			emit(MsgNotFilled)
			step(StageGate, false, MsgNotFilled, fmt.Sprintf("filled: value is %s", class))
			return msgs
		}
		step(StageGate, true, "", "filled: value is present")
	case Maybe:
		if class == Nil {
			step(StageGate, true, "", "maybe: nil skips the predicate")
			return nil
		}
		step(StageGate, true, "", "maybe: value is not nil")
	}

	if !n.check(v) {
		emit(n.message)
		step(StagePredicate, false, n.message, n.spec.Predicate.String())
		return msgs
	}
	step(StagePredicate, true, "", n.spec.Predicate.String())
	return msgs
}
