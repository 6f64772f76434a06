package evaluator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyExpression is returned when a rule carries no expression body.
	ErrEmptyExpression = errors.New("evaluator: expression must not be empty")
	// ErrUnknownEngine is returned by New for unsupported engine names.
	ErrUnknownEngine = errors.New("evaluator: unknown engine")
	// ErrEngineUnavailable is returned when an engine was compiled out.
	ErrEngineUnavailable = errors.New("evaluator: engine unavailable in this build")
)

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	Field  string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("evaluator: %s %s field=%s: %v", e.Engine, describeExpression(e.Expr), e.Field, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "evaluator:") {
		return err
	}
	return fmt.Errorf("evaluator: %s: %w", engine, err)
}

func wrapEvaluationError(engine, expr, field string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Field == "" {
			evalErr.Field = field
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Field:  field,
		Err:    err,
	}
}
