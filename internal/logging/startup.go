package logging

import (
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger collects the run identity, settings and host resources, then
// emits a single structured zerolog event describing how a run was started.
type StartupLogger struct {
	name      string
	runID     string
	version   string
	workers   int
	cpus      int
	initDelay time.Duration

	paths    map[string]string
	features map[string]bool
	config   map[string]string
}

// NewStartupLogger creates a StartupLogger for the given command name with a
// fresh run ID.
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:     name,
		runID:    uuid.NewString(),
		paths:    make(map[string]string),
		features: make(map[string]bool),
		config:   make(map[string]string),
	}
}

// RunID returns the identifier attached to this run's startup event.
func (s *StartupLogger) RunID() string {
	return s.runID
}

// Version sets the build version baked into the binary.
func (s *StartupLogger) Version(v string) *StartupLogger {
	s.version = v
	return s
}

// Workers records the parallelism limit and the CPU count it was derived from.
func (s *StartupLogger) Workers(workers, cpus int) *StartupLogger {
	s.workers = workers
	s.cpus = cpus
	return s
}

// Path registers an input or output location.
func (s *StartupLogger) Path(label, path string) *StartupLogger {
	s.paths[label] = path
	return s
}

// Feature registers a boolean switch (e.g. "overwrite", "metrics").
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config registers a non-sensitive configuration key-value pair.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.config[key] = value
	return s
}

// InitDuration records how long setup took before the first file was queued.
func (s *StartupLogger) InitDuration(d time.Duration) *StartupLogger {
	s.initDelay = d
	return s
}

// EnvOrDefault returns the value of the named environment variable, or
// defaultVal if the variable is empty or unset.
func EnvOrDefault(envVar, defaultVal string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return defaultVal
}

// Log emits a single structured INFO log event with all collected information.
func (s *StartupLogger) Log() {
	s.emit(log.Info())
}

func (s *StartupLogger) emit(evt *zerolog.Event) {
	run := zerolog.Dict().
		Str("name", s.name).
		Str("runId", s.runID).
		Str("goVersion", runtime.Version()).
		Str("os", runtime.GOOS).
		Str("arch", runtime.GOARCH).
		Str("logLevel", zerolog.GlobalLevel().String())

	if s.version != "" {
		run = run.Str("version", s.version)
	}
	evt = evt.Dict("run", run)

	if s.workers > 0 {
		evt = evt.Dict("resources", zerolog.Dict().
			Int("workers", s.workers).
			Int("cpus", s.cpus))
	}

	if len(s.paths) > 0 {
		evt = evt.Dict("paths", dictFromMap(s.paths))
	}

	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}

	if len(s.config) > 0 {
		evt = evt.Dict("config", dictFromMap(s.config))
	}

	if s.initDelay > 0 {
		evt = evt.Dur("initDuration", s.initDelay)
	}

	evt.Msg("Run started")
}

// dictFromMap converts a map[string]string into a zerolog.Event (Dict).
func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
