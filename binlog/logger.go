// Package binlog defines the logging sink every layer of the client
// writes through. It replaces the reference implementation's
// process-global log function pointer with an interface injected at
// construction time, the way a Go library is expected to behave.
package binlog

import "log"

// Logger is implemented by anything that can receive leveled log lines
// with structured-ish key/value pairs. fields is interpreted the same
// way log.Println would treat extra arguments: printed after msg,
// space-separated.
type Logger interface {
	Critical(msg string, fields ...any)
	Error(msg string, fields ...any)
	Warning(msg string, fields ...any)
	Info(msg string, fields ...any)
	Debug(msg string, fields ...any)
}

// StdLogger wraps the standard library's log package, the way the
// teacher library logs throughout (log.Printf/log.Println), with no
// dependency on a structured-logging library that nothing in the
// retrieved examples actually imports.
type StdLogger struct {
	// Verbose, when false, silently drops Debug-level lines. Everything
	// else always logs.
	Verbose bool
}

func (l *StdLogger) Critical(msg string, fields ...any) { l.logf("CRITICAL", msg, fields...) }
func (l *StdLogger) Error(msg string, fields ...any)    { l.logf("ERROR", msg, fields...) }
func (l *StdLogger) Warning(msg string, fields ...any)  { l.logf("WARNING", msg, fields...) }
func (l *StdLogger) Info(msg string, fields ...any)     { l.logf("INFO", msg, fields...) }

func (l *StdLogger) Debug(msg string, fields ...any) {
	if !l.Verbose {
		return
	}
	l.logf("DEBUG", msg, fields...)
}

func (l *StdLogger) logf(level, msg string, fields ...any) {
	if len(fields) == 0 {
		log.Printf("[%s] %s", level, msg)
		return
	}
	log.Println(append([]any{"[" + level + "]", msg}, fields...)...)
}

// Nop discards every log line. Useful in tests that don't want log
// package chatter hitting stderr.
type Nop struct{}

func (Nop) Critical(string, ...any) {}
func (Nop) Error(string, ...any)    {}
func (Nop) Warning(string, ...any)  {}
func (Nop) Info(string, ...any)     {}
func (Nop) Debug(string, ...any)    {}
