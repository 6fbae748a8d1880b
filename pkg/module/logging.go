package module

import "time"

// LoadEvent describes one module load attempt.
type LoadEvent struct {
	Path     string
	Loader   string
	Kind     ExportKind
	Cached   bool
	Duration time.Duration
	Err      error
}

// LoadLogger records module load events.
type LoadLogger interface {
	LogLoad(LoadEvent)
}

// LoadLoggerFunc adapts a function to LoadLogger.
type LoadLoggerFunc func(LoadEvent)

// LogLoad implements LoadLogger.
func (f LoadLoggerFunc) LogLoad(event LoadEvent) {
	if f != nil {
		f(event)
	}
}

type noopLoadLogger struct{}

func (noopLoadLogger) LogLoad(LoadEvent) {}
