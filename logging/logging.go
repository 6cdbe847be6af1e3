// Package logging is the solver's thin verbosity-gated logger.
//
// No repository in the retrieval pack imports a structured logging
// library (zerolog, zap, logrus, slog all absent across the 435-file
// pack); every pack repo that logs at all does so with stdlib log or
// fmt.Printf directly, as felipends-revised-simplex/simplex/simplex.go
// does throughout its pivot loop. This package keeps that idiom but
// gates it by a verbosity level, rather than leaving the solver
// permanently printf-chatty the way the teacher's iteration loop is.
package logging

import (
	"log"
	"os"
)

// Level is a verbosity threshold.
type Level int

const (
	Silent Level = iota
	Warn
	Info
	Debug
)

// Logger wraps a standard *log.Logger with a verbosity gate.
type Logger struct {
	level Level
	l     *log.Logger
}

// New builds a Logger writing to stderr at the given level.
func New(level Level) *Logger {
	return &Logger{level: level, l: log.New(os.Stderr, "", log.LstdFlags)}
}

// Default is Info-level, matching the verbosity the teacher's own pivot
// loop prints at (every iteration and every base change).
func Default() *Logger { return New(Info) }

func (g *Logger) Infof(format string, args ...interface{}) {
	if g.level >= Info {
		g.l.Printf("INFO  "+format, args...)
	}
}

func (g *Logger) Warnf(format string, args ...interface{}) {
	if g.level >= Warn {
		g.l.Printf("WARN  "+format, args...)
	}
}

func (g *Logger) Debugf(format string, args ...interface{}) {
	if g.level >= Debug {
		g.l.Printf("DEBUG "+format, args...)
	}
}

// SetLevel adjusts the gate at runtime (spec §2 "configuration may raise
// or lower verbosity mid-run without reopening the solver").
func (g *Logger) SetLevel(level Level) { g.level = level }
