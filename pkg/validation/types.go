package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validator validates input against rules and reports per-field messages.
type Validator interface {
	Make(ctx context.Context, input map[string]any, rules RuleSet, messages Messages) (*Result, error)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, input map[string]any, rules RuleSet, messages Messages) (*Result, error)

// Make implements Validator.
func (fn ValidatorFunc) Make(ctx context.Context, input map[string]any, rules RuleSet, messages Messages) (*Result, error) {
	return fn(ctx, input, rules, messages)
}

// Rules is the ordered list of rules declared for one field. In definition
// files it may be written as a single string or as a list.
type Rules []string

// UnmarshalJSON accepts either a string or an array of strings.
func (r *Rules) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*r = compactRules([]string{single})
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("validation: rules must be a string or a list of strings: %w", err)
	}
	*r = compactRules(list)
	return nil
}

// UnmarshalYAML accepts either a scalar or a sequence of scalars.
func (r *Rules) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*r = Rules{}
			return nil
		}
		*r = compactRules([]string{node.Value})
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*r = compactRules(list)
		return nil
	default:
		return fmt.Errorf("validation: line %d: rules must be a string or a list of strings", node.Line)
	}
}

func compactRules(in []string) Rules {
	out := make(Rules, 0, len(in))
	for _, rule := range in {
		if rule = strings.TrimSpace(rule); rule != "" {
			out = append(out, rule)
		}
	}
	return out
}

// RuleSet maps field names to their rules.
type RuleSet map[string]Rules

// Only restricts the set to fields. A nil fields slice keeps every rule; an
// empty non-nil slice keeps none.
func (r RuleSet) Only(fields []string) RuleSet {
	if fields == nil {
		return r.Clone()
	}
	out := make(RuleSet, len(fields))
	for _, field := range fields {
		if rules, ok := r[field]; ok {
			out[field] = append(Rules(nil), rules...)
		}
	}
	return out
}

// Compact drops fields without any non-blank rule.
func (r RuleSet) Compact() RuleSet {
	out := make(RuleSet, len(r))
	for field, rules := range r {
		if compacted := compactRules(rules); len(compacted) > 0 {
			out[field] = compacted
		}
	}
	return out
}

// Clone returns a deep copy of r.
func (r RuleSet) Clone() RuleSet {
	if r == nil {
		return nil
	}
	out := make(RuleSet, len(r))
	for field, rules := range r {
		cloned := make(Rules, len(rules))
		copy(cloned, rules)
		out[field] = cloned
	}
	return out
}

// Fields returns the field names sorted alphabetically.
func (r RuleSet) Fields() []string {
	fields := make([]string, 0, len(r))
	for field := range r {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Messages overrides failure messages. Keys are looked up as "field.rule",
// then "field", then "rule". Messages may reference :attribute and :param.
type Messages map[string]string

// Clone returns a copy of m.
func (m Messages) Clone() Messages {
	if m == nil {
		return nil
	}
	out := make(Messages, len(m))
	for key, value := range m {
		out[key] = value
	}
	return out
}

// Definition bundles the rules and messages declared for a form.
type Definition struct {
	Identity string   `json:"-" yaml:"-"`
	Rules    RuleSet  `json:"rules" yaml:"rules"`
	Messages Messages `json:"messages,omitempty" yaml:"messages,omitempty"`
}
