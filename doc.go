// Package formstate keeps the field values of multi-page forms in the
// session between requests.
//
// A FormState is bound to one form identity. Save persists submitted fields
// under "<prefix>[<identity>]", Load hydrates them on the next request, and
// Old resolves a field through flashed input, then persisted values, then
// the caller default:
//
//	form, err := formstate.Open(ctx, "example_form",
//		formstate.WithSession(sess),
//		formstate.WithInput(in),
//		formstate.WithRules(validation.RuleSet{
//			"first_name": {"required"},
//			"status":     {"required"},
//		}),
//	)
//	if err != nil {
//		return err
//	}
//	if !form.IsValid(ctx, []string{"first_name", "last_name", "status"}, nil) {
//		return redirectBack(form.Validation())
//	}
//	return form.Save(ctx, []string{"first_name", "last_name", "status"}, nil)
//
// Validation is delegated to a validation.Validator; the default engine
// understands go-playground/validator tags plus expr:, cel: and js: rules.
package formstate
