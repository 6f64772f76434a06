package formstate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formstate/pkg/activity"
	"github.com/goliatone/go-formstate/pkg/evaluator"
	"github.com/goliatone/go-formstate/pkg/validation"
)

// IsValid validates fields (every declared rule when nil) against in (the
// request input when nil) and reports whether they pass. Errors from hooks or
// the validator count as failure; they are logged and kept for
// ValidationErr.
func (f *FormState) IsValid(ctx context.Context, fields []string, in map[string]any) bool {
	result, err := f.Validate(ctx, fields, in)
	if err != nil {
		f.logger().Warn("form validation failed to run",
			slog.String("form", f.identity),
			slog.Any("error", err),
		)
		return false
	}
	return result.Passes()
}

// Validate is IsValid with the error returned. A rule set that is empty once
// restricted to fields passes without calling the validator.
func (f *FormState) Validate(ctx context.Context, fields []string, in map[string]any) (*validation.Result, error) {
	f.result, f.validationErr = nil, nil
	if ctx == nil {
		ctx = context.Background()
	}

	for _, hook := range f.cfg.beforeValidation {
		if err := hook(ctx, f); err != nil {
			f.validationErr = fmt.Errorf("formstate: before validation: %w", err)
			return nil, f.validationErr
		}
	}

	rules := f.cfg.rules.Only(fields)
	if len(rules) == 0 {
		f.result = validation.NewResult()
		return f.result, nil
	}
	rules = rules.Compact()

	if in == nil {
		in = f.cfg.input.All()
	}
	result, err := f.validator().Make(ctx, in, rules, f.cfg.messages)
	if err != nil {
		f.validationErr = fmt.Errorf("formstate: validate %s: %w", f.identity, err)
		return nil, f.validationErr
	}
	if result == nil {
		result = validation.NewResult()
	}
	f.result = result

	f.emit(ctx, activity.VerbValidated, rules.Fields(), map[string]any{
		"passed":        result.Passes(),
		"failed_fields": result.Fields(),
	})
	return result, nil
}

// Validation returns the result of the last validation, or nil.
func (f *FormState) Validation() *validation.Result {
	return f.result
}

// ValidationErr returns the error that aborted the last validation, if any.
func (f *FormState) ValidationErr() error {
	return f.validationErr
}

func (f *FormState) validator() validation.Validator {
	if f.cfg.validator == nil {
		f.cfg.validator = validation.New(
			validation.WithEvaluatorLogger(evaluator.SlogLogger(f.cfg.logger)),
		)
	}
	return f.cfg.validator
}
