package evaluator

import "time"

// RuleContext carries the bindings visible to a rule expression.
type RuleContext struct {
	Field string
	Value any
	Input map[string]any
	Now   *time.Time
	Args  map[string]any
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Input == nil {
		ctx.Input = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx RuleContext) fieldLabel() string {
	if ctx.Field != "" {
		return ctx.Field
	}
	return "unknown"
}

// bindings returns the reserved variables. Reserved names win over input keys.
func (ctx RuleContext) bindings() map[string]any {
	return map[string]any{
		"value": ctx.Value,
		"field": ctx.Field,
		"input": ctx.Input,
		"now":   ctx.timestamp(),
		"args":  ctx.Args,
	}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct {
	skipCache bool
}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// CompileWithoutCache compiles without reading or filling the program cache,
// e.g. when linting definitions that will never be evaluated.
func CompileWithoutCache() CompileOption {
	return compileOptionFunc(func(cfg *compileConfig) {
		cfg.skipCache = true
	})
}

// compileCache returns the cache a compile should use, nil when skipped.
func compileCache(cache ProgramCache, opts []CompileOption) ProgramCache {
	var cfg compileConfig
	for _, opt := range opts {
		if opt != nil {
			opt.applyCompileOption(&cfg)
		}
	}
	if cfg.skipCache {
		return nil
	}
	return cache
}
