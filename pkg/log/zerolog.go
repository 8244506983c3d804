package log

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/scigo/mixture/pkg/errors"
)

// ZerologProvider serves loggers backed by zerolog.
type ZerologProvider struct {
	mu   sync.RWMutex
	root zerolog.Logger
}

// NewZerologProvider creates a provider writing JSON lines to w.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	root := zerolog.New(w).With().Timestamp().Logger().Level(toZerologLevel(level))
	return &ZerologProvider{root: root}
}

// UseZerolog installs a zerolog provider process-wide and routes
// errors.Warn through it, so warnings such as ConvergenceWarning are logged
// with their structured fields.
func UseZerolog(w io.Writer, level Level) *ZerologProvider {
	p := NewZerologProvider(w, level)
	SetProvider(p)
	errors.SetZerologWarnFunc(p.warn)
	return p
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zerologLogger{l: p.root}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zerologLogger{l: p.root.With().Str("component", name).Logger()}
}

// SetLevel implements LoggerProvider.SetLevel. Loggers handed out earlier keep
// their level.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.root = p.root.Level(toZerologLevel(level))
}

func (p *ZerologProvider) warn(w error) {
	p.mu.RLock()
	l := p.root
	p.mu.RUnlock()

	ev := l.Warn()
	if m, ok := w.(zerolog.LogObjectMarshaler); ok {
		ev = ev.Object("warning", m)
	}
	ev.Msg(w.Error())
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

type zerologLogger struct {
	l zerolog.Logger
}

func (z *zerologLogger) Debug(msg string, fields ...any) {
	z.l.Debug().Fields(normalizeFields(fields)).Msg(msg)
}

func (z *zerologLogger) Info(msg string, fields ...any) {
	z.l.Info().Fields(normalizeFields(fields)).Msg(msg)
}

func (z *zerologLogger) Warn(msg string, fields ...any) {
	z.l.Warn().Fields(normalizeFields(fields)).Msg(msg)
}

func (z *zerologLogger) Error(msg string, fields ...any) {
	z.l.Error().Fields(normalizeFields(fields)).Msg(msg)
}

func (z *zerologLogger) With(fields ...any) Logger {
	return &zerologLogger{l: z.l.With().Fields(normalizeFields(fields)).Logger()}
}

func (z *zerologLogger) Enabled(ctx context.Context, level Level) bool {
	zl := toZerologLevel(level)
	return zl >= z.l.GetLevel() && zl >= zerolog.GlobalLevel()
}
