package keyschema

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Stage is one step of a key's evaluation.
type Stage int

const (
	// StagePresence checks whether the key is in the input.
	StagePresence Stage = iota + 1
	// StageGate applies the macro: filled rejects nil and blank values, maybe skips nil.
	StageGate
	// StagePredicate runs the predicate, or fails it for a missing required key.
	StagePredicate
)

func (s Stage) String() string {
	switch s {
	case StagePresence:
		return "presence"
	case StageGate:
		return "gate"
	case StagePredicate:
		return "predicate"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Diagnostics records how each rule of a schema was evaluated against one input.
// Keys are in declaration order, one entry per rule, passing or not.
type Diagnostics struct {
	SchemaID string
	Keys     []KeyDiagnostics
}

// KeyDiagnostics is the evaluation record of one rule.
type KeyDiagnostics struct {
	Rule  RuleSpec
	Class Class
	// The input value; nil when absent.
	Value any
	// The stages reached, in order. Stages skipped by short-circuiting are not listed.
	Steps []Step
}

// Step is the outcome of one stage.
type Step struct {
	Stage Stage
	Pass  bool
	// Message key emitted by the stage, if it failed.
	Message string
	// Short description of the decision made.
	Note string
}

// Key returns the diagnostics for key.
func (d *Diagnostics) Key(key string) (KeyDiagnostics, bool) {
	for _, kd := range d.Keys {
		if kd.Rule.Key == key {
			return kd, true
		}
	}
	return KeyDiagnostics{}, false
}

// String produces a table of every stage reached for every key.
func (d *Diagnostics) String() string {
	tw := table.NewWriter()
	tw.SetTitle("\nEVALUATION DIAGNOSTICS %s\n", d.SchemaID)
	tw.AppendHeader(table.Row{"Rule", "Value", "Class", "Stage", "Pass/\nFail", "Message", "Note"})

	for _, kd := range d.Keys {
		value := ""
		if kd.Class != Absent {
			value = fmt.Sprintf("%v", kd.Value)
		}
		for i, st := range kd.Steps {
			rule, val, class := "", "", ""
			if i == 0 {
				rule, val, class = kd.Rule.String(), value, kd.Class.String()
			}
			tw.AppendRow(table.Row{rule, val, class, st.Stage, passFail(st.Pass), st.Message, st.Note})
		}
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 30},
	})
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}

// Summary lists the failing stages, one per line, as key/stage: message.
func (d *Diagnostics) Summary() string {
	var sb strings.Builder
	for _, kd := range d.Keys {
		for _, st := range kd.Steps {
			if st.Pass {
				continue
			}
			fmt.Fprintf(&sb, "%s/%s: %s\n", kd.Rule.Key, st.Stage, st.Message)
		}
	}
	return sb.String()
}
