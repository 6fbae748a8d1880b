package buildopts

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-buildopts/pkg/module"
)

// ResolveEvent describes one finished (or aborted) resolution.
type ResolveEvent struct {
	ID       string
	Target   string
	Keys     int
	Duration time.Duration
	Err      error
}

// Logger records resolution events.
type Logger interface {
	LogResolve(ResolveEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(ResolveEvent)

// LogResolve implements Logger.
func (f LoggerFunc) LogResolve(event ResolveEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogResolve(ResolveEvent) {}

// ZerologLogger writes resolution, evaluation and module load events to a
// zerolog logger. It satisfies Logger, EvaluatorLogger and module.LoadLogger.
type ZerologLogger struct {
	logger zerolog.Logger
}

var (
	_ Logger            = (*ZerologLogger)(nil)
	_ EvaluatorLogger   = (*ZerologLogger)(nil)
	_ module.LoadLogger = (*ZerologLogger)(nil)
)

// NewZerologLogger wraps logger.
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

func (l *ZerologLogger) LogResolve(event ResolveEvent) {
	entry := l.logger.Debug()
	if event.Err != nil {
		entry = l.logger.Error().Err(event.Err)
	}
	entry.
		Str("resolution", event.ID).
		Str("target", event.Target).
		Int("keys", event.Keys).
		Dur("duration", event.Duration).
		Msg("resolve options")
}

func (l *ZerologLogger) LogEvaluation(event EvaluatorLogEvent) {
	entry := l.logger.Trace()
	if event.Err != nil {
		entry = l.logger.Warn().Err(event.Err)
	}
	entry.
		Str("engine", event.Engine).
		Str("key", event.Key).
		Str("expr", event.Expr).
		Dur("duration", event.Duration).
		Msg("merge strategy")
}

func (l *ZerologLogger) LogLoad(event module.LoadEvent) {
	entry := l.logger.Debug()
	if event.Err != nil {
		entry = l.logger.Error().Err(event.Err)
	}
	entry.
		Str("path", event.Path).
		Str("loader", event.Loader).
		Stringer("export", event.Kind).
		Bool("cached", event.Cached).
		Dur("duration", event.Duration).
		Msg("load module")
}
