package keyschema

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Schema is a compiled, immutable set of key rules, kept in declaration order.
// It is safe to evaluate a Schema from many goroutines at once.
type Schema struct {
	id    string
	nodes []ruleNode
}

// ruleNode is a compiled rule: the RuleSpec plus its resolved predicate.
type ruleNode struct {
	spec    RuleSpec
	check   PredicateFunc
	message string
}

// ID returns the schema identifier.
func (s *Schema) ID() string {
	return s.id
}

// Keys returns the declared keys in declaration order.
func (s *Schema) Keys() []string {
	keys := make([]string, len(s.nodes))
	for i, n := range s.nodes {
		keys[i] = n.spec.Key
	}
	return keys
}

// Rules returns a copy of the rule specifications the schema was compiled from.
func (s *Schema) Rules() []RuleSpec {
	rules := make([]RuleSpec, len(s.nodes))
	for i, n := range s.nodes {
		rules[i] = n.spec
	}
	return rules
}

// String returns a table of the schema's rules.
func (s *Schema) String() string {
	tw := table.NewWriter()
	tw.SetTitle(fmt.Sprintf("\nSCHEMA %s\n", s.id))
	tw.AppendHeader(table.Row{"Key", "Presence", "Macro", "Predicate", "Failure\nMessage"})
	for _, n := range s.nodes {
		tw.AppendRow(table.Row{
			n.spec.Key,
			n.spec.Presence,
			n.spec.Macro,
			n.spec.Predicate,
			n.message,
		})
	}
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}
