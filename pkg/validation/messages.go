package validation

import "strings"

var defaultMessages = map[string]string{
	"required": "The :attribute field is required.",
	"email":    "The :attribute must be a valid email address.",
	"url":      "The :attribute format is invalid.",
	"uri":      "The :attribute format is invalid.",
	"uuid":     "The :attribute must be a valid UUID.",
	"min":      "The :attribute must be at least :param.",
	"max":      "The :attribute may not be greater than :param.",
	"len":      "The :attribute must be :param.",
	"gte":      "The :attribute must be at least :param.",
	"lte":      "The :attribute may not be greater than :param.",
	"oneof":    "The selected :attribute is invalid.",
	"numeric":  "The :attribute must be a number.",
	"number":   "The :attribute must be a number.",
	"boolean":  "The :attribute field must be true or false.",
	"alpha":    "The :attribute may only contain letters.",
	"alphanum": "The :attribute may only contain letters and numbers.",
	"datetime": "The :attribute does not match the format :param.",
}

const fallbackMessage = "The :attribute field is invalid."

// message resolves the text for a failed rule on field.
func (m Messages) message(field, rule, param string) string {
	text, ok := m[field+"."+rule]
	if !ok {
		text, ok = m[field]
	}
	if !ok {
		text, ok = m[rule]
	}
	if !ok {
		text, ok = defaultMessages[rule]
	}
	if !ok {
		text = fallbackMessage
	}
	return formatMessage(text, field, param)
}

func formatMessage(text, field, param string) string {
	return strings.NewReplacer(
		":attribute", attributeName(field),
		":param", param,
	).Replace(text)
}

func attributeName(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
