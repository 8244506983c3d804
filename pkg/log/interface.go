// Package log provides a structured logging interface for mixture model fitting.
//
// The Logger interface is slog-compatible so that the backend can be switched
// between log/slog (the default, see SetupLogger) and zerolog (see
// NewZerologProvider) without touching estimator code. Estimators obtain a
// named logger once and attach the attribute keys defined in attributes.go.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("mixture.gaussian").With(
//	    log.ModelNameKey, "GaussianMixture",
//	)
//	logger.Info("EM started",
//	    log.OperationKey, log.OperationFit,
//	    log.SamplesKey, 1000,
//	    log.ComponentsKey, 3,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key/value pairs. Error additionally accepts an error
// value as its first field, which is recorded under the "error" key and, for
// errors created through pkg/errors, carries a stack trace.
type Logger interface {
	// Debug logs detailed diagnostics such as per-iteration log-likelihoods.
	Debug(msg string, fields ...any)

	// Info logs general operational information, e.g. fit start and end.
	Info(msg string, fields ...any)

	// Warn logs conditions that do not stop the fit, e.g. a covariance that
	// had to be regularized or an iteration budget that ran out.
	Warn(msg string, fields ...any)

	// Error logs error conditions.
	//
	//   logger.Error("Fit rejected input",
	//       err,
	//       log.OperationKey, log.OperationFit,
	//   )
	Error(msg string, fields ...any)

	// With returns a Logger that includes the given fields in every record.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	// Use it to skip building expensive fields:
	//
	//   if logger.Enabled(ctx, log.LevelDebug) {
	//       logger.Debug("Component weights", "weights", weights)
	//   }
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers. Swapping the provider
// (SetProvider) swaps the backend for every estimator.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}

// normalizeFields turns a leading error into an "error" attribute and pads an
// odd trailing key so that every backend receives well-formed pairs.
func normalizeFields(fields []any) []any {
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			fields = append([]any{ErrAttrKey, err}, fields[1:]...)
		}
	}
	if len(fields)%2 != 0 {
		fields = append(fields, nil)
	}
	return fields
}
