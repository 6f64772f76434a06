package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// RulesExtension is the schema extension that carries rules without an
// OpenAPI equivalent, such as expression rules.
const RulesExtension = "x-formstate-rules"

type exportConfig struct {
	openAPIVersion string
	title          string
	version        string
	path           string
	method         string
	operationID    string
	contentType    string
}

// ExportOption configures ToOpenAPI.
type ExportOption func(*exportConfig)

// WithDocumentInfo sets info.title and info.version.
func WithDocumentInfo(title, version string) ExportOption {
	return func(cfg *exportConfig) {
		if title = strings.TrimSpace(title); title != "" {
			cfg.title = title
		}
		if version = strings.TrimSpace(version); version != "" {
			cfg.version = version
		}
	}
}

// WithOperation sets the path, method and operationId of the form submission.
func WithOperation(path, method, operationID string) ExportOption {
	return func(cfg *exportConfig) {
		if path = strings.TrimSpace(path); path != "" {
			cfg.path = path
		}
		if method = strings.ToLower(strings.TrimSpace(method)); method != "" {
			cfg.method = method
		}
		if operationID = strings.TrimSpace(operationID); operationID != "" {
			cfg.operationID = operationID
		}
	}
}

// WithContentType sets the request body media type.
func WithContentType(contentType string) ExportOption {
	return func(cfg *exportConfig) {
		if contentType = strings.TrimSpace(contentType); contentType != "" {
			cfg.contentType = contentType
		}
	}
}

// ToOpenAPI describes the submission of form identity as an OpenAPI 3
// document whose request body schema mirrors def's rules. It is the inverse
// of FromOpenAPI for tag rules; other rules are listed under RulesExtension.
func ToOpenAPI(ctx context.Context, identity string, def Definition, opts ...ExportOption) (map[string]any, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, errors.New("validation: export needs a form identity")
	}
	cfg := exportConfig{
		openAPIVersion: "3.0.3",
		title:          identity,
		version:        "1.0.0",
		path:           "/forms/" + identity,
		method:         "post",
		operationID:    identity,
		contentType:    "application/x-www-form-urlencoded",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	properties := map[string]any{}
	var required []string
	for _, field := range def.Rules.Fields() {
		schema, isRequired := fieldSchema(def.Rules[field])
		properties[field] = schema
		if isRequired {
			required = append(required, field)
		}
	}
	body := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		body["required"] = required
	}

	document := map[string]any{
		"openapi": cfg.openAPIVersion,
		"info": map[string]any{
			"title":   cfg.title,
			"version": cfg.version,
		},
		"paths": map[string]any{
			cfg.path: map[string]any{
				cfg.method: map[string]any{
					"operationId": cfg.operationID,
					"requestBody": map[string]any{
						"required": true,
						"content": map[string]any{
							cfg.contentType: map[string]any{"schema": body},
						},
					},
					"responses": map[string]any{
						"204": map[string]any{"description": "OK"},
						"422": map[string]any{"description": "Validation failed"},
					},
				},
			},
		},
	}
	if err := validateExport(ctx, document); err != nil {
		return nil, err
	}
	return document, nil
}

func fieldSchema(rules Rules) (map[string]any, bool) {
	schema := map[string]any{"type": "string"}
	var extra []string
	var tags [][2]string
	required := false

	for _, rule := range rules {
		if name, _, ok := strings.Cut(rule, ":"); ok && isEngineName(strings.ToLower(strings.TrimSpace(name))) {
			extra = append(extra, rule)
			continue
		}
		for _, tag := range strings.Split(rule, ",") {
			name, param, _ := strings.Cut(strings.TrimSpace(tag), "=")
			switch name {
			case "":
			case "required":
				required = true
			case "omitempty":
			case "numeric", "number":
				schema["type"] = "number"
			case "boolean":
				schema["type"] = "boolean"
			default:
				tags = append(tags, [2]string{name, param})
			}
		}
	}

	numeric := schema["type"] == "number"
	for _, tag := range tags {
		name, param := tag[0], tag[1]
		switch name {
		case "min", "max":
			n, err := strconv.ParseFloat(param, 64)
			if err != nil {
				extra = append(extra, name+"="+param)
				continue
			}
			switch {
			case numeric && name == "min":
				schema["minimum"] = n
			case numeric:
				schema["maximum"] = n
			case name == "min":
				schema["minLength"] = uint64(n)
			default:
				schema["maxLength"] = uint64(n)
			}
		case "oneof":
			values := strings.Fields(param)
			enum := make([]any, len(values))
			for i, value := range values {
				enum[i] = value
			}
			schema["enum"] = enum
		default:
			if format := tagFormat(name, param); format != "" {
				schema["format"] = format
				continue
			}
			if param != "" {
				name += "=" + param
			}
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		schema[RulesExtension] = extra
	}
	return schema, required
}

func tagFormat(name, param string) string {
	switch name {
	case "email", "uuid", "ipv4", "ipv6", "hostname":
		return name
	case "url", "uri":
		return "uri"
	case "datetime":
		if param == "2006-01-02" {
			return "date"
		}
		return "date-time"
	default:
		return ""
	}
}

func validateExport(ctx context.Context, document map[string]any) error {
	raw, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("validation: encode openapi document: %w", err)
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return fmt.Errorf("validation: load generated openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("validation: generated openapi document is invalid: %w", err)
	}
	return nil
}
