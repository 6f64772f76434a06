package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goliatone/go-formstate/pkg/evaluator"
)

// ErrInvalidRule marks a rule the engine cannot run, such as an unknown tag.
var ErrInvalidRule = errors.New("validation: invalid rule")

// Option configures an Engine.
type Option func(*Engine)

// WithValidate supplies a preconfigured validator instance, e.g. one with
// custom tags registered.
func WithValidate(validate *validator.Validate) Option {
	return func(e *Engine) {
		if validate != nil {
			e.validate = validate
		}
	}
}

// WithProgramCache shares cache across every expression engine.
func WithProgramCache(cache evaluator.ProgramCache) Option {
	return func(e *Engine) {
		e.cfg.Cache = cache
	}
}

// WithFunctions exposes registry functions to expression rules.
func WithFunctions(registry *evaluator.FunctionRegistry) Option {
	return func(e *Engine) {
		e.cfg.Functions = registry
	}
}

// WithEvaluator registers ev for rules prefixed with "<prefix>:". It replaces
// the built-in engine of the same name.
func WithEvaluator(prefix string, ev evaluator.Evaluator) Option {
	return func(e *Engine) {
		if prefix == "" || ev == nil {
			return
		}
		if e.custom == nil {
			e.custom = map[string]evaluator.Evaluator{}
		}
		e.custom[strings.ToLower(prefix)] = ev
	}
}

// WithEvaluatorLogger records every expression evaluation.
func WithEvaluatorLogger(logger evaluator.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time bound to `now` in expressions.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine is the default Validator.
type Engine struct {
	validate   *validator.Validate
	cfg        evaluator.Config
	custom     map[string]evaluator.Evaluator
	evaluators map[string]evaluator.Evaluator
	logger     evaluator.Logger
	now        func() time.Time
}

// New builds an Engine with the expr and cel engines, plus js when compiled
// with the js_eval tag.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: evaluator.NopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.validate == nil {
		e.validate = validator.New(validator.WithRequiredStructEnabled())
	}
	e.evaluators = map[string]evaluator.Evaluator{}
	for _, name := range evaluator.Engines() {
		ev, err := evaluator.New(name, e.cfg)
		if err != nil {
			continue
		}
		e.evaluators[name] = ev
	}
	for name, ev := range e.custom {
		e.evaluators[name] = ev
	}
	return e
}

// Make implements Validator. Every rule of every field runs; a field collects
// one message per failing rule. Misconfigured rules abort with an error.
func (e *Engine) Make(ctx context.Context, input map[string]any, rules RuleSet, messages Messages) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if input == nil {
		input = map[string]any{}
	}
	result := NewResult()
	now := e.now()
	for _, field := range rules.Fields() {
		value := normalizeValue(input[field])
		for _, rule := range rules[field] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			name, param, ok, err := e.check(ctx, field, value, input, rule, now)
			if err != nil {
				return nil, fmt.Errorf("validation: field %q: %w", field, err)
			}
			if !ok {
				result.Add(field, messages.message(field, name, param))
			}
		}
	}
	return result, nil
}

// Compile checks every rule in rules without validating any input. It is
// used to lint definition files ahead of time.
func (e *Engine) Compile(rules RuleSet) error {
	var errs []error
	for _, field := range rules.Fields() {
		for _, rule := range rules[field] {
			if engine, body, ok := e.splitExpression(rule); ok {
				ev, err := e.evaluatorFor(engine)
				if err == nil {
					_, err = ev.Compile(body, evaluator.CompileWithoutCache())
				}
				if err != nil {
					errs = append(errs, fmt.Errorf("field %q rule %q: %w", field, rule, err))
				}
				continue
			}
			if _, err := e.checkTag(context.Background(), "", rule); err != nil {
				errs = append(errs, fmt.Errorf("field %q: %w", field, err))
			}
		}
	}
	return errors.Join(errs...)
}

// check returns the rule name and param used for messages and whether value
// satisfied the rule.
func (e *Engine) check(ctx context.Context, field string, value any, input map[string]any, rule string, now time.Time) (string, string, bool, error) {
	if engine, body, ok := e.splitExpression(rule); ok {
		ev, err := e.evaluatorFor(engine)
		if err != nil {
			return engine, "", false, err
		}
		passed, err := evaluator.RunBool(ev, e.logger, evaluator.RuleContext{
			Field: field,
			Value: value,
			Input: input,
			Now:   &now,
		}, body)
		return engine, "", passed, err
	}

	fieldErr, err := e.checkTag(ctx, value, rule)
	if err != nil {
		return rule, "", false, err
	}
	if fieldErr != nil {
		return fieldErr.Tag(), fieldErr.Param(), false, nil
	}
	return rule, "", true, nil
}

func (e *Engine) checkTag(ctx context.Context, value any, tag string) (fieldErr validator.FieldError, err error) {
	defer func() {
		if r := recover(); r != nil {
			fieldErr = nil
			err = fmt.Errorf("%w %q: %v", ErrInvalidRule, tag, r)
		}
	}()
	verr := e.validate.VarCtx(ctx, value, tag)
	if verr == nil {
		return nil, nil
	}
	var failures validator.ValidationErrors
	if errors.As(verr, &failures) && len(failures) > 0 {
		return failures[0], nil
	}
	return nil, fmt.Errorf("%w %q: %v", ErrInvalidRule, tag, verr)
}

func (e *Engine) evaluatorFor(engine string) (evaluator.Evaluator, error) {
	if ev, ok := e.evaluators[engine]; ok {
		return ev, nil
	}
	return nil, fmt.Errorf("%w: %s", evaluator.ErrEngineUnavailable, engine)
}

// splitExpression recognises "<engine>:<body>" for built-in and registered
// engine names.
func (e *Engine) splitExpression(rule string) (string, string, bool) {
	name, body, found := strings.Cut(rule, ":")
	if !found {
		return "", "", false
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if _, registered := e.evaluators[name]; !registered && !isEngineName(name) {
		return "", "", false
	}
	return name, strings.TrimSpace(body), true
}

var engineNames = map[string]struct{}{
	evaluator.EngineExpr: {},
	evaluator.EngineCEL:  {},
	evaluator.EngineJS:   {},
}

func isEngineName(name string) bool {
	_, ok := engineNames[name]
	return ok
}

func normalizeValue(value any) any {
	if value == nil {
		return ""
	}
	return value
}
