// Package observability provides logging, metrics and tracing helpers for
// the binding runtime.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
)

// EnrichLogger adds binding context to a logger.
// Returns a new logger with binding_id and expression fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, b.ID(), "user.name")
//	enriched.Debug("binding refreshed") // includes binding_id, expression
func EnrichLogger(logger *slog.Logger, bindingID, expression string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("binding_id", bindingID),
		slog.String("expression", expression),
	)
}

// LogParseError logs an expression that failed to parse.
func LogParseError(logger *slog.Logger, expression string, err error) {
	if logger == nil {
		return
	}
	logger.Error("expression parse failed",
		slog.String("expression", expression),
		slog.String("error", err.Error()),
	)
}

// LogBindingError logs a binding that failed to evaluate or update its target.
func LogBindingError(logger *slog.Logger, bindingID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("binding update failed",
		slog.String("binding_id", bindingID),
		slog.String("error", err.Error()),
	)
}

// LogObserverError logs an error raised while notifying subscribers.
func LogObserverError(logger *slog.Logger, observer string, err error) {
	if logger == nil {
		return
	}
	logger.Error("observer notification failed",
		slog.String("observer", observer),
		slog.String("error", err.Error()),
	)
}

// LogDirtyCheck logs one polling pass of the dirty checker.
func LogDirtyCheck(logger *slog.Logger, properties, changed int) {
	if logger == nil {
		return
	}
	logger.Debug("dirty check",
		slog.Int("properties", properties),
		slog.Int("changed", changed),
	)
}

// LogBind logs a binding being attached to a scope.
func LogBind(logger *slog.Logger, bindingID, mode string) {
	if logger == nil {
		return
	}
	logger.Debug("binding bound",
		slog.String("binding_id", bindingID),
		slog.String("mode", mode),
	)
}

// LogUnbind logs a binding being detached.
func LogUnbind(logger *slog.Logger, bindingID string, observers int) {
	if logger == nil {
		return
	}
	logger.Debug("binding unbound",
		slog.String("binding_id", bindingID),
		slog.Int("released_observers", observers),
	)
}

// ParseLevel maps a textual level to slog.Level. Unknown values map to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "WARN", "warning":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
