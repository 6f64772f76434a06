package evaluator

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type evaluatorFactory struct {
	name string
	new  func(cache ProgramCache, registry *FunctionRegistry) Evaluator
}

var evaluatorFactories = []evaluatorFactory{
	{
		name: EngineExpr,
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry))
		},
	},
	{
		name: EngineCEL,
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry))
		},
	},
}

type countingCache struct {
	hits   int
	misses int
	store  map[string]any
}

func (c *countingCache) Get(key string) (any, bool) {
	value, ok := c.store[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return value, ok
}

func (c *countingCache) Set(key string, value any) {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = value
}

func TestEvaluatorsResolveRuleBindings(t *testing.T) {
	cases := []struct {
		name  string
		rules map[string]string
		ctx   RuleContext
		want  bool
	}{
		{
			name:  "value equality",
			rules: map[string]string{EngineExpr: `value == "alice"`, EngineCEL: `value == "alice"`},
			ctx:   RuleContext{Field: "name", Value: "alice"},
			want:  true,
		},
		{
			name:  "length check",
			rules: map[string]string{EngineExpr: `len(value) >= 3`, EngineCEL: `size(value) >= 3`},
			ctx:   RuleContext{Field: "name", Value: "al"},
			want:  false,
		},
		{
			name: "cross field",
			rules: map[string]string{
				EngineExpr: `value == password`,
				EngineCEL:  `value == input.password`,
			},
			ctx: RuleContext{
				Field: "password_confirmation",
				Value: "s3cret",
				Input: map[string]any{"password": "s3cret", "password_confirmation": "s3cret"},
			},
			want: true,
		},
		{
			name:  "field binding",
			rules: map[string]string{EngineExpr: `field == "email"`, EngineCEL: `field == "email"`},
			ctx:   RuleContext{Field: "email", Value: ""},
			want:  true,
		},
		{
			name:  "args binding",
			rules: map[string]string{EngineExpr: `value == args.expected`, EngineCEL: `value == args.expected`},
			ctx:   RuleContext{Field: "plan", Value: "pro", Args: map[string]any{"expected": "pro"}},
			want:  true,
		},
	}

	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			for _, tc := range cases {
				tc := tc
				t.Run(tc.name, func(t *testing.T) {
					got, err := evaluator.Evaluate(tc.ctx, tc.rules[factory.name])
					if err != nil {
						t.Fatalf("evaluate: %v", err)
					}
					if got != tc.want {
						t.Fatalf("expected %v, got %v", tc.want, got)
					}
				})
			}
		})
	}
}

func TestEvaluatorProgramCache(t *testing.T) {
	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			cache := &countingCache{}
			evaluator := factory.new(cache, nil)
			for i := 0; i < 3; i++ {
				if _, err := evaluator.Evaluate(RuleContext{Value: "x"}, `value == "x"`); err != nil {
					t.Fatalf("iteration %d: %v", i, err)
				}
			}
			if cache.misses != 1 {
				t.Fatalf("expected 1 miss, got %d", cache.misses)
			}
			if cache.hits != 2 {
				t.Fatalf("expected 2 hits, got %d", cache.hits)
			}
			if _, ok := cache.store[factory.name+`:value == "x"`]; !ok {
				t.Fatalf("expected engine scoped key, got %v", cache.store)
			}
		})
	}
}

func TestMemoryCacheSharedAcrossEngines(t *testing.T) {
	cache := NewMemoryCache()
	for _, factory := range evaluatorFactories {
		if _, err := factory.new(cache, nil).Compile(`value == "x"`); err != nil {
			t.Fatalf("%s compile: %v", factory.name, err)
		}
	}
	if cache.Len() != len(evaluatorFactories) {
		t.Fatalf("expected one program per engine, got %d", cache.Len())
	}
}

func TestCompileWithoutCacheLeavesCacheEmpty(t *testing.T) {
	cache := NewMemoryCache()
	for _, factory := range evaluatorFactories {
		rule, err := factory.new(cache, nil).Compile(`value == "x"`, CompileWithoutCache())
		if err != nil {
			t.Fatalf("%s compile: %v", factory.name, err)
		}
		got, err := rule.Evaluate(RuleContext{Value: "x"})
		if err != nil {
			t.Fatalf("%s evaluate: %v", factory.name, err)
		}
		if got != true {
			t.Fatalf("%s: expected true, got %v", factory.name, got)
		}
	}
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache, got %d programs", cache.Len())
	}
}

func TestCustomFunctionsAcrossEvaluators(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("equalsIgnoreCase", func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("equalsIgnoreCase expects 2 args")
		}
		a, _ := args[0].(string)
		b, _ := args[1].(string)
		return strings.EqualFold(a, b), nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			rule, err := factory.new(nil, registry).Compile(`equalsignorecase(value, "ALICE")`)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			got, err := rule.Evaluate(RuleContext{Field: "name", Value: "alice"})
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if got != true {
				t.Fatalf("expected true, got %v", got)
			}
		})
	}
}

func TestFunctionRegistryRejectsDuplicates(t *testing.T) {
	registry := NewFunctionRegistry()
	fn := func(args ...any) (any, error) { return true, nil }
	if err := registry.Register("Slug", fn); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("slug", fn); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if !registry.Has("SLUG") {
		t.Fatalf("expected lookup to be case-insensitive")
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatalf("expected error for missing function")
	}
}

func TestCompileErrorsCarryMetadata(t *testing.T) {
	for _, factory := range evaluatorFactories {
		_, err := factory.new(nil, nil).Compile(`value ==`)
		var evalErr *EvaluationError
		if !errors.As(err, &evalErr) {
			t.Fatalf("%s: expected EvaluationError, got %T (%v)", factory.name, err, err)
		}
		if evalErr.Engine != factory.name {
			t.Fatalf("expected engine %q, got %q", factory.name, evalErr.Engine)
		}
		if evalErr.Expr != `value ==` {
			t.Fatalf("expected expression metadata, got %q", evalErr.Expr)
		}
	}
}

func TestCELRequiresInputMapForKeys(t *testing.T) {
	ev := NewCELEvaluator()
	ctx := RuleContext{Field: "email", Value: "a@b.c", Input: map[string]any{"email": "a@b.c"}}
	if _, err := ev.Evaluate(ctx, `email != ""`); err == nil {
		t.Fatalf("expected bare input key to fail to compile")
	}
	got, err := ev.Evaluate(ctx, `input.email != ""`)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != true {
		t.Fatalf("expected true, got %v", got)
	}
}

func TestEmptyExpression(t *testing.T) {
	for _, factory := range evaluatorFactories {
		if _, err := factory.new(nil, nil).Evaluate(RuleContext{}, ""); !errors.Is(err, ErrEmptyExpression) {
			t.Fatalf("%s: expected ErrEmptyExpression, got %v", factory.name, err)
		}
	}
}

func TestRunBoolRejectsNonBoolean(t *testing.T) {
	_, err := RunBool(NewExprEvaluator(), nil, RuleContext{Field: "name", Value: "x"}, `value`)
	if !errors.Is(err, ErrNotBoolean) {
		t.Fatalf("expected ErrNotBoolean, got %v", err)
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) || evalErr.Field != "name" {
		t.Fatalf("expected field metadata on error, got %v", err)
	}
}

func TestRunLogsThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ok, err := RunBool(NewExprEvaluator(), SlogLogger(logger), RuleContext{Field: "age", Value: 21}, `value >= 18`)
	if err != nil || !ok {
		t.Fatalf("expected rule to pass, got %v %v", ok, err)
	}
	out := buf.String()
	if !strings.Contains(out, "rule evaluated") || !strings.Contains(out, "engine=expr") || !strings.Contains(out, "field=age") {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestRuleContextDefaultsNow(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	got, err := NewCELEvaluator().Evaluate(RuleContext{Now: &fixed}, `now.getHours() == 8`)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != true {
		t.Fatalf("expected fixed clock to be visible, got %v", got)
	}
	ctx := RuleContext{}.withDefaults()
	if ctx.Now == nil || ctx.Args == nil || ctx.Input == nil {
		t.Fatalf("expected defaults to populate now and maps: %+v", ctx)
	}
}

func TestNewEngine(t *testing.T) {
	if _, err := New("lua", Config{}); !errors.Is(err, ErrUnknownEngine) {
		t.Fatalf("expected ErrUnknownEngine, got %v", err)
	}
	for _, name := range []string{EngineExpr, EngineCEL} {
		e, err := New(name, Config{Cache: NewMemoryCache()})
		if err != nil {
			t.Fatalf("new %s: %v", name, err)
		}
		if Name(e) != name {
			t.Fatalf("expected engine name %q, got %q", name, Name(e))
		}
	}
	_, err := New(EngineJS, Config{})
	if jsAvailable() && err != nil {
		t.Fatalf("expected js engine, got %v", err)
	}
	if !jsAvailable() && !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{Engine: "expr", Err: base}

	err := wrapEvaluationError("cel", "rule", "email", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" || existing.Field != "email" {
		t.Fatalf("expected metadata to be filled, got %+v", existing)
	}
}
