// Package validation is the validator service consumed by formstate.
//
// A RuleSet maps field names to an ordered list of rules. Each rule is either
// a go-playground/validator tag ("required", "omitempty,email", "min=3") or an
// expression prefixed with its engine name ("expr:value == password",
// "cel:size(value) > 2", "js:value.startsWith('x')"). The default Engine runs
// tags through validator.Var and expressions through pkg/evaluator; it never
// defines rules of its own.
//
// Rule sets can be declared in code, loaded from YAML or JSON definition files
// (LoadFS), or derived from an OpenAPI request body (FromOpenAPI).
package validation
