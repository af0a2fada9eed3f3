// Package logutil provides the small logging interface injected into the
// analysis components, so the numerical engines stay testable without
// capturing a global logger.
package logutil

import (
	"log"
	"os"
)

// Logger is the logging surface the core components depend on.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// New returns a Logger writing to stderr, namespaced by module name
// (e.g. "aat.analysis").
func New(module string) Logger {
	return &stdLogger{l: log.New(os.Stderr, "aat."+module+" ", log.LstdFlags)}
}

type stdLogger struct {
	l *log.Logger
}

func (s *stdLogger) Debugf(format string, args ...any) { s.l.Printf("DEBUG "+format, args...) }
func (s *stdLogger) Infof(format string, args ...any)  { s.l.Printf("INFO "+format, args...) }
func (s *stdLogger) Warnf(format string, args ...any)  { s.l.Printf("WARN "+format, args...) }
func (s *stdLogger) Errorf(format string, args ...any) { s.l.Printf("ERROR "+format, args...) }

// Nop discards everything. Useful for tests and for callers that attach no
// observer.
var Nop Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
