package validation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrOperationNotFound is returned when FromOpenAPI cannot find operationID.
var ErrOperationNotFound = errors.New("validation: openapi operation not found")

var formMediaTypes = []string{
	"application/x-www-form-urlencoded",
	"multipart/form-data",
	"application/json",
}

// FromOpenAPI derives a Definition from the request body schema of
// operationID in the OpenAPI document raw.
//
// Required properties get "required", others "omitempty". String length,
// format and enum constraints become validator tags; pattern and numeric
// bounds become expr rules since form input arrives as strings.
func FromOpenAPI(ctx context.Context, raw []byte, operationID string) (Definition, error) {
	if len(raw) == 0 {
		return Definition{}, fmt.Errorf("validation: openapi document is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return Definition{}, fmt.Errorf("validation: load openapi document: %w", err)
	}

	op := findOperation(doc, operationID)
	if op == nil {
		return Definition{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}
	schema := requestSchema(op.RequestBody)
	if schema == nil {
		return Definition{}, fmt.Errorf("validation: operation %q has no request body schema", operationID)
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	def := Definition{Identity: operationID, Rules: RuleSet{}}
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		if rules := propertyRules(ref.Value, required[name]); len(rules) > 0 {
			def.Rules[name] = rules
		}
	}
	return def, nil
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	paths := doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)
	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range formMediaTypes {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func propertyRules(schema *openapi3.Schema, required bool) Rules {
	var tags []string
	var exprs []string

	switch firstSchemaType(schema.Type) {
	case "integer":
		tags = append(tags, "numeric")
		exprs = append(exprs, numericBounds(schema, "int")...)
	case "number":
		tags = append(tags, "numeric")
		exprs = append(exprs, numericBounds(schema, "float")...)
	case "boolean":
		tags = append(tags, "boolean")
	case "array":
		if schema.MinItems > 0 {
			tags = append(tags, "min="+strconv.FormatUint(schema.MinItems, 10))
		}
		if schema.MaxItems != nil {
			tags = append(tags, "max="+strconv.FormatUint(*schema.MaxItems, 10))
		}
	default:
		if schema.MinLength > 0 {
			tags = append(tags, "min="+strconv.FormatUint(schema.MinLength, 10))
		}
		if schema.MaxLength != nil {
			tags = append(tags, "max="+strconv.FormatUint(*schema.MaxLength, 10))
		}
		if tag := formatTag(schema.Format); tag != "" {
			tags = append(tags, tag)
		}
		if schema.Pattern != "" {
			exprs = append(exprs, "value matches "+strconv.Quote(schema.Pattern))
		}
	}
	if len(schema.Enum) > 0 {
		if tag, ok := enumTag(schema.Enum); ok {
			tags = append(tags, tag)
		} else {
			exprs = append(exprs, "value in "+enumList(schema.Enum))
		}
	}

	var rules Rules
	switch {
	case required:
		rules = append(rules, strings.Join(append([]string{"required"}, tags...), ","))
	case len(tags) > 0:
		rules = append(rules, strings.Join(append([]string{"omitempty"}, tags...), ","))
	}
	for _, expr := range exprs {
		if !required {
			expr = `value == "" || ` + expr
		}
		rules = append(rules, "expr:"+expr)
	}
	return rules
}

func numericBounds(schema *openapi3.Schema, conv string) []string {
	var out []string
	if schema.Min != nil {
		op := ">="
		if schema.ExclusiveMin {
			op = ">"
		}
		out = append(out, fmt.Sprintf("%s(value) %s %s", conv, op, formatNumber(*schema.Min)))
	}
	if schema.Max != nil {
		op := "<="
		if schema.ExclusiveMax {
			op = "<"
		}
		out = append(out, fmt.Sprintf("%s(value) %s %s", conv, op, formatNumber(*schema.Max)))
	}
	return out
}

func formatTag(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "email":
		return "email"
	case "uri", "url":
		return "url"
	case "uuid":
		return "uuid"
	case "date":
		return "datetime=2006-01-02"
	case "date-time":
		return "datetime=2006-01-02T15:04:05Z07:00"
	case "ipv4":
		return "ipv4"
	case "ipv6":
		return "ipv6"
	case "hostname":
		return "hostname"
	default:
		return ""
	}
}

// enumTag renders a oneof tag when every value is a space-free scalar.
func enumTag(values []any) (string, bool) {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		text := fmt.Sprint(value)
		if text == "" || strings.ContainsAny(text, " ,|'\"") {
			return "", false
		}
		parts = append(parts, text)
	}
	return "oneof=" + strings.Join(parts, " "), true
}

func enumList(values []any) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		parts = append(parts, strconv.Quote(fmt.Sprint(value)))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
