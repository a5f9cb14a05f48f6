// Package yuzulog provides the leveled logger both Server and Client
// accept. It generalizes the level-gated LogFunction wrapper around the
// standard log package from bringyour-connect/connect/log.go, but
// drops that file's GlobalLogLevel package variable in favor of an
// instance-scoped Level field, per this port's design note on
// replacing global settings objects with per-instance configuration.
package yuzulog

import (
	"fmt"
	"log"
	"os"
)

// Level gates which calls reach the underlying writer, lowest to
// highest severity, matching spec §6's "debug/log/warn/error" filter.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelSilent disables all output.
	LevelSilent
)

// Logger is the leveled logging surface Server/Client configuration
// accepts (spec §6: "Logger + level filter: debug/log/warn/error").
type Logger interface {
	Debugf(format string, args ...any)
	Logf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// std wraps a standard *log.Logger with an instance-scoped level, the
// default implementation used when no Logger is supplied.
type std struct {
	level  Level
	logger *log.Logger
}

// New returns a Logger writing to os.Stderr with the standard
// library's log.Ldate|log.Ltime|log.Lshortfile flags, matching the
// format bringyour-connect's log.go sets on its package-level logger.
func New(level Level) Logger {
	return &std{
		level:  level,
		logger: log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

func (l *std) emit(level Level, tag, format string, args ...any) {
	if level < l.level {
		return
	}
	l.logger.Output(3, fmt.Sprintf("%s: %s", tag, fmt.Sprintf(format, args...)))
}

func (l *std) Debugf(format string, args ...any) { l.emit(LevelDebug, "DEBUG", format, args...) }
func (l *std) Logf(format string, args ...any)   { l.emit(LevelInfo, "INFO", format, args...) }
func (l *std) Warnf(format string, args ...any)  { l.emit(LevelWarn, "WARN", format, args...) }
func (l *std) Errorf(format string, args ...any) { l.emit(LevelError, "ERROR", format, args...) }

// Discard silences all output; useful for tests.
func Discard() Logger { return discard{} }

type discard struct{}

func (discard) Debugf(string, ...any) {}
func (discard) Logf(string, ...any)   {}
func (discard) Warnf(string, ...any)  {}
func (discard) Errorf(string, ...any) {}
