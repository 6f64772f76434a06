package evaluator

import (
	"sync"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELOption configures the CEL evaluator.
type CELOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELOption {
	return func(e *celEvaluator) {
		e.cache = scopeCache(EngineCEL, cache)
	}
}

// CELWithFunctionRegistry declares each registry function as a unary and
// binary dyn overload.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry

	envOnce sync.Once
	env     *celgo.Env
	envErr  error
}

// NewCELEvaluator constructs an Evaluator backed by cel-go. The CEL
// environment is declared once, so input keys are not top-level variables;
// reach them through the input map, e.g. `input.email != ""`.
func NewCELEvaluator(opts ...CELOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	program, err := e.loadOrCompile(expression, e.cache)
	if err != nil {
		return nil, err
	}
	return e.run(ctx.withDefaults(), expression, program)
}

func (e *celEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	program, err := e.loadOrCompile(expression, compileCache(e.cache, opts))
	if err != nil {
		return nil, err
	}
	return &celCompiledRule{evaluator: e, expression: expression, program: program}, nil
}

func (e *celEvaluator) run(ctx RuleContext, expression string, program celgo.Program) (any, error) {
	out, _, err := program.Eval(ctx.bindings())
	if err != nil {
		return nil, wrapEvaluationError(EngineCEL, expression, ctx.fieldLabel(), err)
	}
	return out.Value(), nil
}

func (e *celEvaluator) loadOrCompile(expression string, cache ProgramCache) (celgo.Program, error) {
	if cache != nil {
		if cached, ok := cache.Get(expression); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	env, err := e.environment()
	if err != nil {
		return nil, wrapEvaluatorError(EngineCEL, err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError(EngineCEL, expression, "", issues.Err())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, wrapEvaluationError(EngineCEL, expression, "", err)
	}
	if cache != nil {
		cache.Set(expression, program)
	}
	return program, nil
}

func (e *celEvaluator) environment() (*celgo.Env, error) {
	e.envOnce.Do(func() {
		opts := []celgo.EnvOption{
			celgo.Variable("value", celgo.DynType),
			celgo.Variable("field", celgo.StringType),
			celgo.Variable("input", celgo.MapType(celgo.StringType, celgo.DynType)),
			celgo.Variable("now", celgo.TimestampType),
			celgo.Variable("args", celgo.MapType(celgo.StringType, celgo.DynType)),
		}
		opts = append(opts, e.functionOptions()...)
		e.env, e.envErr = celgo.NewEnv(opts...)
	})
	return e.env, e.envErr
}

func (e *celEvaluator) functionOptions() []celgo.EnvOption {
	if e.registry == nil {
		return nil
	}
	var opts []celgo.EnvOption
	for _, name := range e.registry.Names() {
		fn := name
		opts = append(opts, celgo.Function(fn,
			celgo.Overload(fn+"_dyn",
				[]*celgo.Type{celgo.DynType}, celgo.DynType,
				celgo.UnaryBinding(func(arg ref.Val) ref.Val {
					return e.call(fn, arg)
				}),
			),
			celgo.Overload(fn+"_dyn_dyn",
				[]*celgo.Type{celgo.DynType, celgo.DynType}, celgo.DynType,
				celgo.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					return e.call(fn, lhs, rhs)
				}),
			),
		))
	}
	return opts
}

func (e *celEvaluator) call(name string, values ...ref.Val) ref.Val {
	args := make([]any, 0, len(values))
	for _, val := range values {
		args = append(args, val.Value())
	}
	result, err := e.registry.Call(name, args...)
	if err != nil {
		return types.NewErr("%v", err)
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	expression string
	program    celgo.Program
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	return r.evaluator.run(ctx.withDefaults(), r.expression, r.program)
}
