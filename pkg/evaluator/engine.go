package evaluator

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Engine names accepted by New and used as rule prefixes.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// ErrNotBoolean is returned by RunBool when a rule yields a non-bool value.
var ErrNotBoolean = errors.New("evaluator: rule must return a boolean")

// Config holds the shared collaborators handed to every engine built by New.
type Config struct {
	Cache     ProgramCache
	Functions *FunctionRegistry
}

// New builds the evaluator registered under engine.
func New(engine string, cfg Config) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case EngineExpr:
		return NewExprEvaluator(
			ExprWithProgramCache(cfg.Cache),
			ExprWithFunctionRegistry(cfg.Functions),
		), nil
	case EngineCEL:
		return NewCELEvaluator(
			CELWithProgramCache(cfg.Cache),
			CELWithFunctionRegistry(cfg.Functions),
		), nil
	case EngineJS:
		if !jsAvailable() {
			return nil, fmt.Errorf("%w: %s", ErrEngineUnavailable, engine)
		}
		return NewJSEvaluator(
			JSWithProgramCache(cfg.Cache),
			JSWithFunctionRegistry(cfg.Functions),
		), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}

// Engines lists the engine names available in this build.
func Engines() []string {
	engines := []string{EngineExpr, EngineCEL}
	if jsAvailable() {
		engines = append(engines, EngineJS)
	}
	return engines
}

// Name reports the engine behind e, or "custom" for foreign implementations.
func Name(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*evaluator.exprEvaluator":
		return EngineExpr
	case "*evaluator.celEvaluator":
		return EngineCEL
	case "*evaluator.jsEvaluator":
		return EngineJS
	default:
		return "custom"
	}
}

// Run evaluates expr with e and reports the attempt to logger.
func Run(e Evaluator, logger Logger, ctx RuleContext, expr string) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("evaluator: evaluator is nil")
	}
	if logger == nil {
		logger = noopLogger{}
	}
	ctx = ctx.withDefaults()
	engine := Name(e)
	start := time.Now()
	value, err := e.Evaluate(ctx, expr)
	err = wrapEvaluationError(engine, expr, ctx.fieldLabel(), err)
	logger.LogEvaluation(LogEvent{
		Engine:   engine,
		Expr:     expr,
		Field:    ctx.fieldLabel(),
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// RunBool is Run for predicate rules.
func RunBool(e Evaluator, logger Logger, ctx RuleContext, expr string) (bool, error) {
	value, err := Run(e, logger, ctx, expr)
	if err != nil {
		return false, err
	}
	ok, isBool := value.(bool)
	if !isBool {
		return false, wrapEvaluationError(Name(e), expr, ctx.fieldLabel(), fmt.Errorf("%w, got %T", ErrNotBoolean, value))
	}
	return ok, nil
}
