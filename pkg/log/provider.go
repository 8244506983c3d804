package log

import (
	"context"
	"log/slog"
	"sync"
)

var (
	providerMu sync.RWMutex
	provider   LoggerProvider

	defaultLevel = new(slog.LevelVar)
)

func init() {
	provider = NewSlogProvider(nil)
}

// SetProvider replaces the process-wide provider used by GetLogger and
// GetLoggerWithName. Passing nil restores the slog default.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	if p == nil {
		p = NewSlogProvider(nil)
	}
	provider = p
}

// GetLogger returns the default logger of the current provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a logger tagged with the given component name,
// e.g. "mixture.gaussian".
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}

// SlogProvider serves loggers backed by log/slog.
type SlogProvider struct {
	base *slog.Logger
}

// NewSlogProvider creates a provider over base. A nil base follows
// slog.Default() at call time, so SetupLogger takes effect immediately.
func NewSlogProvider(base *slog.Logger) *SlogProvider {
	return &SlogProvider{base: base}
}

func (p *SlogProvider) logger() *slog.Logger {
	if p.base != nil {
		return p.base
	}
	return slog.Default()
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *SlogProvider) GetLogger() Logger {
	return &slogLogger{l: p.logger()}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *SlogProvider) GetLoggerWithName(name string) Logger {
	return &slogLogger{l: p.logger().With("component", name)}
}

// SetLevel implements LoggerProvider.SetLevel. It adjusts the level shared
// with handlers installed by SetupLogger.
func (p *SlogProvider) SetLevel(level Level) {
	defaultLevel.Set(slog.Level(level))
}

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.l.Debug(msg, normalizeFields(fields)...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.l.Info(msg, normalizeFields(fields)...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.l.Warn(msg, normalizeFields(fields)...) }
func (s *slogLogger) Error(msg string, fields ...any) { s.l.Error(msg, normalizeFields(fields)...) }

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(normalizeFields(fields)...)}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.l.Enabled(ctx, slog.Level(level))
}
