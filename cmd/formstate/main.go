// Command formstate checks form definition files and derives rule sets from
// OpenAPI documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/evaluator"
	"github.com/goliatone/go-formstate/pkg/validation"
)

// Global carries state shared by every command.
type Global struct {
	Out    io.Writer
	Logger *slog.Logger
}

// CLI is the root command.
type CLI struct {
	Verbose bool `short:"v" help:"Enable verbose logging"`

	Lint    LintCmd    `cmd:"" help:"Check every rule in a directory of form definitions"`
	OpenAPI OpenAPICmd `cmd:"" name:"openapi" help:"Derive a form definition from an OpenAPI operation"`
	Export  ExportCmd  `cmd:"" help:"Describe a form definition as an OpenAPI document"`
}

// AfterApply sets up logging once flags are parsed.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// ErrLintFailed is returned when at least one form has invalid rules.
var ErrLintFailed = errors.New("lint found invalid rules")

// LintCmd implements the 'lint' command.
type LintCmd struct {
	Dir string `arg:"" help:"Directory holding .json, .yaml or .yml definition files" type:"existingdir"`
}

// Run loads every definition under Dir and compiles its rules.
func (l *LintCmd) Run(g *Global) error {
	catalog, err := validation.LoadFS(os.DirFS(l.Dir))
	if err != nil {
		return err
	}
	engine := validation.New(validation.WithEvaluatorLogger(evaluator.SlogLogger(g.Logger)))

	failed := 0
	for _, identity := range catalog.Identities() {
		def, _ := catalog.Lookup(identity)
		if err := engine.Compile(def.Rules); err != nil {
			failed++
			fmt.Fprintf(g.Out, "%s (%s):\n", identity, catalog.Source(identity))
			for _, issue := range unwrapJoined(err) {
				fmt.Fprintf(g.Out, "  %v\n", issue)
			}
			continue
		}
		g.Logger.Debug("form definition ok", "form", identity, "fields", len(def.Rules))
	}

	fmt.Fprintf(g.Out, "%d form(s) checked, %d with errors\n", catalog.Len(), failed)
	if failed > 0 {
		return fmt.Errorf("%w in %d form(s)", ErrLintFailed, failed)
	}
	return nil
}

// OpenAPICmd implements the 'openapi' command.
type OpenAPICmd struct {
	File      string `arg:"" help:"OpenAPI 3 document (JSON or YAML)" type:"existingfile"`
	Operation string `short:"o" required:"" help:"operationId whose request body describes the form"`
	Form      string `short:"f" help:"Form identity to emit (defaults to the operationId)"`
}

// Run prints the derived definition as a definition file.
func (o *OpenAPICmd) Run(g *Global) error {
	raw, err := os.ReadFile(o.File)
	if err != nil {
		return err
	}
	def, err := validation.FromOpenAPI(context.Background(), raw, o.Operation)
	if err != nil {
		return err
	}
	identity := o.Form
	if identity == "" {
		identity = o.Operation
	}

	entry := map[string]any{"rules": def.Rules}
	if len(def.Messages) > 0 {
		entry["messages"] = def.Messages
	}
	enc := yaml.NewEncoder(g.Out)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any{"forms": map[string]any{identity: entry}}); err != nil {
		return err
	}
	return enc.Close()
}

// ExportCmd implements the 'export' command.
type ExportCmd struct {
	Dir    string `arg:"" help:"Directory holding definition files" type:"existingdir"`
	Form   string `short:"f" required:"" help:"Form identity to export"`
	Path   string `help:"Request path (defaults to /forms/<form>)"`
	Method string `default:"post" help:"HTTP method of the submission"`
}

// Run prints the OpenAPI document for Form as YAML.
func (e *ExportCmd) Run(g *Global) error {
	catalog, err := validation.LoadFS(os.DirFS(e.Dir))
	if err != nil {
		return err
	}
	def, ok := catalog.Lookup(e.Form)
	if !ok {
		return fmt.Errorf("form %q not found in %s", e.Form, e.Dir)
	}
	document, err := validation.ToOpenAPI(context.Background(), e.Form, def,
		validation.WithOperation(e.Path, e.Method, ""),
	)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(g.Out)
	enc.SetIndent(2)
	if err := enc.Encode(document); err != nil {
		return err
	}
	return enc.Close()
}

func unwrapJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

func newParser(cli *CLI, g *Global, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("formstate"),
		kong.Description("Form definition tooling."),
		kong.UsageOnError(),
		kong.Bind(g),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli, &Global{Out: os.Stdout, Logger: slog.Default()})
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	if err := ctx.Run(); err != nil {
		slog.Error("command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}
