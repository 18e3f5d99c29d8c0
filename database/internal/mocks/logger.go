// Package mocks provides test doubles shared by the database packages.
package mocks

import (
	"fmt"
	"sync"
	"time"

	"github.com/bowphp/framework-sub001/logger"
)

// Entry is one message captured by Logger.
type Entry struct {
	Level   string
	Message string
	Fields  map[string]any
	Err     error
}

// Logger records every emitted message so tests can assert on them.
// The zero value is ready to use and safe for concurrent use.
type Logger struct {
	mu      *sync.Mutex
	entries *[]Entry
	fields  map[string]any
}

var (
	_ logger.Logger   = (*Logger)(nil)
	_ logger.LogEvent = (*LogEvent)(nil)
)

// NewLogger returns an empty recording logger.
func NewLogger() *Logger {
	return &Logger{mu: &sync.Mutex{}, entries: &[]Entry{}}
}

func (l *Logger) init() {
	if l.mu == nil {
		l.mu = &sync.Mutex{}
		l.entries = &[]Entry{}
	}
}

func (l *Logger) event(level string) logger.LogEvent {
	l.init()
	fields := make(map[string]any, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	return &LogEvent{owner: l, entry: Entry{Level: level, Fields: fields}}
}

// Info starts an info entry.
func (l *Logger) Info() logger.LogEvent { return l.event("info") }

// Error starts an error entry.
func (l *Logger) Error() logger.LogEvent { return l.event("error") }

// Debug starts a debug entry.
func (l *Logger) Debug() logger.LogEvent { return l.event("debug") }

// Warn starts a warn entry.
func (l *Logger) Warn() logger.LogEvent { return l.event("warn") }

// Fatal starts a fatal entry. It never exits.
func (l *Logger) Fatal() logger.LogEvent { return l.event("fatal") }

// WithContext returns l.
func (l *Logger) WithContext(_ any) logger.Logger { return l }

// WithFields returns a logger sharing l's entries with fields attached.
func (l *Logger) WithFields(fields map[string]any) logger.Logger {
	l.init()
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{mu: l.mu, entries: l.entries, fields: merged}
}

// Entries returns a copy of the recorded entries.
func (l *Logger) Entries() []Entry {
	l.init()
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), *l.entries...)
}

// Messages returns the recorded messages at level.
func (l *Logger) Messages(level string) []string {
	var out []string
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

func (l *Logger) record(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, e)
}

// LogEvent collects fields until Msg or Msgf records the entry.
type LogEvent struct {
	owner *Logger
	entry Entry
}

func (e *LogEvent) set(key string, value any) logger.LogEvent {
	e.entry.Fields[key] = value
	return e
}

// Str adds a string field.
func (e *LogEvent) Str(key, value string) logger.LogEvent { return e.set(key, value) }

// Int adds an int field.
func (e *LogEvent) Int(key string, value int) logger.LogEvent { return e.set(key, value) }

// Int64 adds an int64 field.
func (e *LogEvent) Int64(key string, value int64) logger.LogEvent { return e.set(key, value) }

// Uint64 adds a uint64 field.
func (e *LogEvent) Uint64(key string, value uint64) logger.LogEvent { return e.set(key, value) }

// Bool adds a bool field.
func (e *LogEvent) Bool(key string, value bool) logger.LogEvent { return e.set(key, value) }

// Dur adds a duration field.
func (e *LogEvent) Dur(key string, d time.Duration) logger.LogEvent { return e.set(key, d) }

// Interface adds an arbitrary field.
func (e *LogEvent) Interface(key string, i any) logger.LogEvent { return e.set(key, i) }

// Bytes adds a byte slice field.
func (e *LogEvent) Bytes(key string, val []byte) logger.LogEvent { return e.set(key, val) }

// Err attaches err to the entry.
func (e *LogEvent) Err(err error) logger.LogEvent {
	e.entry.Err = err
	return e
}

// Msg records the entry.
func (e *LogEvent) Msg(msg string) {
	e.entry.Message = msg
	e.owner.record(e.entry)
}

// Msgf records the entry with a formatted message.
func (e *LogEvent) Msgf(format string, args ...any) {
	e.Msg(fmt.Sprintf(format, args...))
}
