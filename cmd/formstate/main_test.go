package main

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/validation"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	var cli CLI
	parser, err := newParser(&cli, &Global{Out: &out, Logger: slog.Default()})
	if err != nil {
		t.Fatalf("new parser: %v", err)
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	err = ctx.Run()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLintAcceptsValidDefinitions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "forms.yaml", `
forms:
  example_form:
    rules:
      first_name: required
      status: [required, "oneof=active inactive"]
      suite_number: "expr:value != 'none'"
`)

	out, err := runCLI(t, "lint", dir)
	if err != nil {
		t.Fatalf("expected lint to pass, got %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 form(s) checked, 0 with errors") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestLintReportsInvalidRules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "forms.json", `{"forms":{"signup":{"rules":{"email":["requird"],"age":["expr:value >"]}}}}`)

	out, err := runCLI(t, "lint", dir)
	if !errors.Is(err, ErrLintFailed) {
		t.Fatalf("expected ErrLintFailed, got %v", err)
	}
	if !strings.Contains(out, "signup (forms.json):") {
		t.Fatalf("expected form header, got %q", out)
	}
	if !strings.Contains(out, `field "email"`) || !strings.Contains(out, `field "age"`) {
		t.Fatalf("expected both fields reported, got %q", out)
	}
}

const signupSpec = `
openapi: 3.0.3
info:
  title: Signup
  version: "1.0"
paths:
  /signup:
    post:
      operationId: signup
      requestBody:
        content:
          application/x-www-form-urlencoded:
            schema:
              type: object
              required: [email]
              properties:
                email:
                  type: string
                  format: email
                plan:
                  type: string
                  enum: [free, pro]
      responses:
        "201":
          description: created
`

func TestOpenAPIPrintsDefinition(t *testing.T) {
	path := writeFile(t, t.TempDir(), "api.yaml", signupSpec)

	out, err := runCLI(t, "openapi", path, "--operation", "signup", "--form", "signup_form")
	if err != nil {
		t.Fatalf("openapi: %v", err)
	}

	forms, err := validation.ParseDefinitions([]byte(out), "stdout")
	if err != nil {
		t.Fatalf("output is not a definition file: %v\n%s", err, out)
	}
	def, ok := forms["signup_form"]
	if !ok {
		t.Fatalf("expected signup_form in output, got %s", out)
	}
	want := validation.RuleSet{
		"email": {"required,email"},
		"plan":  {"omitempty,oneof=free pro"},
	}
	if diff := cmp.Diff(want, def.Rules); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("yaml: %v", err)
	}
}

func TestOpenAPIUnknownOperation(t *testing.T) {
	path := writeFile(t, t.TempDir(), "api.yaml", signupSpec)
	if _, err := runCLI(t, "openapi", path, "--operation", "missing"); !errors.Is(err, validation.ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
}

func TestExportRoundTripsThroughOpenAPI(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "forms.yaml", `
forms:
  signup:
    rules:
      email: required,email
      plan: "omitempty,oneof=free pro"
`)

	out, err := runCLI(t, "export", dir, "--form", "signup")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	apiPath := writeFile(t, t.TempDir(), "api.yaml", out)

	printed, err := runCLI(t, "openapi", apiPath, "--operation", "signup")
	if err != nil {
		t.Fatalf("openapi: %v\n%s", err, out)
	}
	forms, err := validation.ParseDefinitions([]byte(printed), "stdout")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := validation.RuleSet{
		"email": {"required,email"},
		"plan":  {"omitempty,oneof=free pro"},
	}
	if diff := cmp.Diff(want, forms["signup"].Rules); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
}
