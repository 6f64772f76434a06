package evaluator

import (
	"context"
	"log/slog"
	"time"
)

// LogEvent describes an evaluation attempt for logging.
type LogEvent struct {
	Engine   string
	Expr     string
	Field    string
	Duration time.Duration
	Err      error
}

// Logger records evaluator events.
type Logger interface {
	LogEvaluation(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogEvaluation implements Logger.
func (f LoggerFunc) LogEvaluation(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogEvaluation(LogEvent) {}

// NopLogger returns a Logger that drops every event.
func NopLogger() Logger {
	return noopLogger{}
}

// SlogLogger writes evaluation events to logger. Successful evaluations are
// logged at debug level, failures at warn.
func SlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return LoggerFunc(func(event LogEvent) {
		attrs := []slog.Attr{
			slog.String("engine", event.Engine),
			slog.String("expr", event.Expr),
			slog.String("field", event.Field),
			slog.Duration("duration", event.Duration),
		}
		if event.Err != nil {
			attrs = append(attrs, slog.Any("error", event.Err))
			logger.LogAttrs(context.Background(), slog.LevelWarn, "rule evaluation failed", attrs...)
			return
		}
		logger.LogAttrs(context.Background(), slog.LevelDebug, "rule evaluated", attrs...)
	})
}
